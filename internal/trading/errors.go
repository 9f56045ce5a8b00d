package trading

import "fmt"

// Stable rejection codes surfaced to callers. Codes never change once
// clients depend on them.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeTokenNotFound       = "TOKEN_NOT_FOUND"
	CodeTokenExists         = "TOKEN_EXISTS"
	CodeGraduatedToken      = "GRADUATED_TOKEN"
	CodeInsufficientSupply  = "INSUFFICIENT_SUPPLY"
	CodePriceImpactExceeded = "PRICE_IMPACT_EXCEEDED"
	CodeLedgerSubmission    = "LEDGER_SUBMISSION_FAILED"
	CodeNothingToClaim      = "NOTHING_TO_CLAIM"
	CodeFeesNotFound        = "FEES_NOT_FOUND"
)

// TradeError is a rejected trade, claim or launch. Domain rejections are
// expected business outcomes, surfaced directly to the user and never
// logged as failures. Numeric figures accompany the rejections where the
// caller can adjust and retry.
type TradeError struct {
	Code    string
	Message string

	// Populated for PRICE_IMPACT_EXCEEDED.
	Impact    float64
	Tolerance float64

	// Populated for INSUFFICIENT_SUPPLY.
	Requested float64
	Available float64

	Err error // underlying cause, if any
}

func (e *TradeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *TradeError) Unwrap() error {
	return e.Err
}

func invalidInput(format string, args ...interface{}) *TradeError {
	return &TradeError{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}
