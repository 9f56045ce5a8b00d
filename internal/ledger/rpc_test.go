package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestLedger(url string) *RPCLedger {
	return NewRPCLedger(url,
		WithMaxRetries(2),
		WithRetryDelay(1*time.Millisecond),
	)
}

func TestRPCLedger_Submit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Method != "sendTransaction" {
			t.Errorf("method = %s, want sendTransaction", req.Method)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": req.ID, "result": "5sig111",
		})
	}))
	defer srv.Close()

	sig, err := newTestLedger(srv.URL).Submit(context.Background(), intent())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sig != "5sig111" {
		t.Errorf("signature = %s, want 5sig111", sig)
	}
}

func TestRPCLedger_TransientRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": req.ID, "result": "5sig222",
		})
	}))
	defer srv.Close()

	sig, err := newTestLedger(srv.URL).Submit(context.Background(), intent())
	if err != nil {
		t.Fatalf("Submit failed after transient errors: %v", err)
	}
	if sig != "5sig222" {
		t.Errorf("signature = %s, want 5sig222", sig)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestRPCLedger_PermanentNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": req.ID,
			"error": map[string]interface{}{"code": rpcErrInsufficientFunds, "message": "insufficient funds"},
		})
	}))
	defer srv.Close()

	_, err := newTestLedger(srv.URL).Submit(context.Background(), intent())
	if !errors.Is(err, ErrSubmissionFailed) {
		t.Fatalf("expected ErrSubmissionFailed, got %v", err)
	}

	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %T", err)
	}
	if subErr.Reason != ReasonInsufficientFunds {
		t.Errorf("reason = %s, want %s", subErr.Reason, ReasonInsufficientFunds)
	}
	if calls.Load() != 1 {
		t.Errorf("permanent error retried: %d attempts", calls.Load())
	}
}

func TestRPCLedger_RetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestLedger(srv.URL).Submit(context.Background(), intent())
	if !errors.Is(err, ErrSubmissionFailed) {
		t.Fatalf("expected ErrSubmissionFailed, got %v", err)
	}

	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %T", err)
	}
	if subErr.Reason != ReasonCongestion {
		t.Errorf("reason = %s, want %s", subErr.Reason, ReasonCongestion)
	}
}
