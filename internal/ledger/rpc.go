package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// RPC error codes the submitter treats as permanent.
const (
	rpcErrInsufficientFunds = -32002
	rpcErrTxRejected        = -32003
)

// RPCLedger implements Ledger over HTTP JSON-RPC 2.0 (sendTransaction).
// Transient failures are retried with capped exponential backoff; permanent
// rejections surface immediately.
type RPCLedger struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// RPCOption configures RPCLedger.
type RPCOption func(*RPCLedger)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) RPCOption {
	return func(l *RPCLedger) {
		l.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) RPCOption {
	return func(l *RPCLedger) {
		l.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) RPCOption {
	return func(l *RPCLedger) {
		l.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) RPCOption {
	return func(l *RPCLedger) {
		l.client = client
	}
}

// NewRPCLedger creates a ledger submitter for the given RPC endpoint.
func NewRPCLedger(endpoint string, opts ...RPCOption) *RPCLedger {
	l := &RPCLedger{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Compile-time interface check.
var _ Ledger = (*RPCLedger)(nil)

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Submit broadcasts the intent and returns the transaction signature.
func (l *RPCLedger) Submit(ctx context.Context, intent *TradeIntent) (string, error) {
	payload, err := json.Marshal(intent)
	if err != nil {
		return "", &SubmissionError{Reason: ReasonRejected, Permanent: true, Err: err}
	}
	encoded := base64.StdEncoding.EncodeToString(payload)

	var signature string
	err = l.call(ctx, "sendTransaction", []interface{}{encoded, map[string]string{"encoding": "base64"}}, &signature)
	if err != nil {
		return "", err
	}
	return signature, nil
}

// call performs a JSON-RPC call with retries and exponential backoff.
// Permanent RPC rejections are never retried.
func (l *RPCLedger) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqID := l.requestID.Add(1)
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return &SubmissionError{Reason: ReasonRejected, Permanent: true, Err: err}
	}

	delay := l.retryDelay
	var lastErr error

	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return &SubmissionError{Reason: ReasonTimeout, Err: ctx.Err()}
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * l.backoffMult)
			if delay > l.maxDelay {
				delay = l.maxDelay
			}
		}

		lastErr = l.callOnce(ctx, body, result)
		if lastErr == nil {
			return nil
		}

		var subErr *SubmissionError
		if errors.As(lastErr, &subErr) && subErr.Permanent {
			return lastErr
		}
	}

	return &SubmissionError{Reason: ReasonCongestion, Err: fmt.Errorf("retries exhausted: %w", lastErr)}
}

// callOnce performs a single HTTP round trip.
func (l *RPCLedger) callOnce(ctx context.Context, body []byte, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status %d: %s", resp.StatusCode, respBody)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return classifyRPCError(rpcResp.Error)
	}

	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}

	return nil
}

// classifyRPCError maps RPC error codes onto submission failure reasons.
func classifyRPCError(e *rpcError) error {
	switch e.Code {
	case rpcErrInsufficientFunds:
		return &SubmissionError{Reason: ReasonInsufficientFunds, Permanent: true, Err: e}
	case rpcErrTxRejected:
		return &SubmissionError{Reason: ReasonRejected, Permanent: true, Err: e}
	default:
		return &SubmissionError{Reason: ReasonCongestion, Err: e}
	}
}
