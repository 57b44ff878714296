package executor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/queue"
)

type recordingHandler struct {
	payload []byte
	err     error
}

func (h *recordingHandler) Handle(ctx context.Context, payload []byte) error {
	h.payload = payload
	return h.err
}

func TestExecuteDispatchesByJobType(t *testing.T) {
	handler := &recordingHandler{}
	exec := NewExecutor(map[string]JobHandler{
		queue.JobTypeMagicLink: handler,
	})

	payload := json.RawMessage(`{"email":"a@example.com"}`)
	err := exec.Execute(context.Background(), db.Job{
		JobType: queue.JobTypeMagicLink,
		Payload: payload,
	})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if string(handler.payload) != string(payload) {
		t.Errorf("handler got payload %q, want %q", handler.payload, payload)
	}
}

func TestExecuteUnknownJobType(t *testing.T) {
	exec := NewExecutor(map[string]JobHandler{})
	err := exec.Execute(context.Background(), db.Job{JobType: "nope"})
	if err == nil || !strings.Contains(err.Error(), "no handler registered") {
		t.Fatalf("expected unknown job type error, got %v", err)
	}
}

func TestExecutePropagatesHandlerError(t *testing.T) {
	wantErr := errors.New("smtp down")
	exec := NewExecutor(map[string]JobHandler{
		queue.JobTypeOtp: &recordingHandler{err: wantErr},
	})
	err := exec.Execute(context.Background(), db.Job{
		JobType: queue.JobTypeOtp,
		Payload: json.RawMessage(`{}`),
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected handler error, got %v", err)
	}
}
