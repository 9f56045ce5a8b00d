package trading

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"meme-launchpad/internal/assets"
	"meme-launchpad/internal/curve"
	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/idhash"
	"meme-launchpad/internal/ledger"
	"meme-launchpad/internal/risk"
	"meme-launchpad/internal/storage"
)

// DefaultTotalSupply is minted when a launch does not specify one.
const DefaultTotalSupply = 1_000_000_000

const maxSymbolLength = 10

// LaunchRequest describes a new token to create.
type LaunchRequest struct {
	Name           string
	Symbol         string
	Description    string
	CreatorAddress string

	Image      []byte
	ImageMime  string
	Banner     []byte
	BannerMime string

	Website  string
	Twitter  string
	Telegram string

	TotalSupply   float64 // 0 means DefaultTotalSupply
	InitialBuySol float64 // creator dev buy routed through the executor, 0 to skip
}

// Launcher creates tokens: uniqueness checks, asset hosting, address
// derivation, risk scoring at creation and the optional initial dev buy.
type Launcher struct {
	tokens   storage.TokenStore
	executor *Executor
	host     assets.Host
	engine   *curve.Engine
	logger   *log.Logger
	now      func() int64
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithLauncherLogger sets the launcher's logger.
func WithLauncherLogger(l *log.Logger) LauncherOption {
	return func(la *Launcher) { la.logger = l }
}

// WithLauncherClock overrides the timestamp source.
func WithLauncherClock(now func() int64) LauncherOption {
	return func(la *Launcher) { la.now = now }
}

// NewLauncher creates a token launcher. The executor handles the optional
// initial dev buy; the asset host stores images and banners.
func NewLauncher(tokens storage.TokenStore, executor *Executor, host assets.Host, engine *curve.Engine, opts ...LauncherOption) *Launcher {
	la := &Launcher{
		tokens:   tokens,
		executor: executor,
		host:     host,
		engine:   engine,
		logger:   log.New(log.Writer(), "[launch] ", log.LstdFlags),
		now:      func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(la)
	}
	return la
}

// Launch creates the token and, if requested, executes the creator's
// initial buy. The token exists even if the initial buy fails; in that
// case both the token and the error are returned.
func (la *Launcher) Launch(ctx context.Context, req *LaunchRequest) (*domain.Token, *domain.TradeResult, error) {
	if err := la.validate(req); err != nil {
		return nil, nil, err
	}

	exists, err := la.tokens.ExistsBySymbolOrName(ctx, req.Symbol, req.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("uniqueness check: %w", err)
	}
	if exists {
		return nil, nil, &TradeError{
			Code:    CodeTokenExists,
			Message: fmt.Sprintf("a token named %q or with symbol %q already exists", req.Name, req.Symbol),
		}
	}

	imageURL, bannerURL, err := la.storeAssets(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	now := la.now()
	mint := ledger.NewMintAddress(fmt.Sprintf("%s|%s|%d", req.Symbol, req.CreatorAddress, now))
	curveAddress, err := ledger.DeriveCurveAddress(mint)
	if err != nil {
		return nil, nil, fmt.Errorf("derive curve address: %w", err)
	}

	totalSupply := req.TotalSupply
	if totalSupply == 0 {
		totalSupply = DefaultTotalSupply
	}

	rugScore := risk.Score(&risk.Metadata{
		Name:           req.Name,
		Symbol:         req.Symbol,
		Description:    req.Description,
		ImageURL:       imageURL,
		BannerURL:      bannerURL,
		Website:        req.Website,
		Twitter:        req.Twitter,
		Telegram:       req.Telegram,
		CreatorAddress: req.CreatorAddress,
		TotalSupply:    totalSupply,
		InitialBuy:     req.InitialBuySol,
	})

	token := &domain.Token{
		ID:             idhash.ComputeTokenID(req.Symbol, req.Name, req.CreatorAddress, now),
		Name:           req.Name,
		Symbol:         req.Symbol,
		CreatorAddress: req.CreatorAddress,
		MintAddress:    mint,
		CurveAddress:   curveAddress,
		Description:    req.Description,
		ImageURL:       imageURL,
		BannerURL:      bannerURL,
		Website:        req.Website,
		Twitter:        req.Twitter,
		Telegram:       req.Telegram,
		TotalSupply:    totalSupply,
		CurrentSupply:  0,
		Price:          la.engine.Price(0),
		MarketCap:      0,
		RugScore:       rugScore,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := la.tokens.Insert(ctx, token); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, nil, &TradeError{
				Code:    CodeTokenExists,
				Message: fmt.Sprintf("a token named %q or with symbol %q already exists", req.Name, req.Symbol),
				Err:     err,
			}
		}
		return nil, nil, fmt.Errorf("insert token: %w", err)
	}

	la.logger.Printf("launched token %s (%s) id=%s rugScore=%d", req.Name, req.Symbol, token.ID, rugScore)

	if req.InitialBuySol <= 0 {
		return token, nil, nil
	}

	buy, err := la.executor.ExecuteTrade(ctx, &TradeRequest{
		TokenID:     token.ID,
		Direction:   domain.TxTypeBuy,
		Amount:      req.InitialBuySol,
		UserAddress: req.CreatorAddress,
	})
	if err != nil {
		// The token stands; only the dev buy failed.
		return token, nil, fmt.Errorf("initial buy: %w", err)
	}
	return token, buy, nil
}

func (la *Launcher) validate(req *LaunchRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return invalidInput("token name is required")
	}
	if strings.TrimSpace(req.Symbol) == "" {
		return invalidInput("token symbol is required")
	}
	if len(req.Symbol) > maxSymbolLength {
		return invalidInput("symbol %q exceeds %d characters", req.Symbol, maxSymbolLength)
	}
	if req.TotalSupply < 0 || req.InitialBuySol < 0 {
		return invalidInput("supply and initial buy must not be negative")
	}
	if err := ledger.ValidateAddress(req.CreatorAddress); err != nil {
		return invalidInput("invalid creator address: %v", err)
	}
	return nil
}

func (la *Launcher) storeAssets(ctx context.Context, req *LaunchRequest) (imageURL, bannerURL string, err error) {
	if len(req.Image) > 0 {
		imageURL, err = la.host.Store(ctx, req.Image, req.ImageMime)
		if err != nil {
			return "", "", invalidInput("store image: %v", err)
		}
	}
	if len(req.Banner) > 0 {
		bannerURL, err = la.host.Store(ctx, req.Banner, req.BannerMime)
		if err != nil {
			return "", "", invalidInput("store banner: %v", err)
		}
	}
	return imageURL, bannerURL, nil
}
