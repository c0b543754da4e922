package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/rootseek/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Every Output call writes one line holding the array of actions.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder

	mu    sync.Mutex
	lines *linePump
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	reader := bufio.NewReader(r)
	return &JSONHandler{
		Reader:  reader,
		Writer:  w,
		Encoder: json.NewEncoder(w),
		lines:   newLinePump(reader),
	}
}

func (h *JSONHandler) Output(ctx context.Context, actions []domain.ActionRequest) (bool, error) {
	if len(actions) == 0 {
		return false, nil
	}

	h.mu.Lock()
	err := h.Encoder.Encode(actions)
	h.mu.Unlock()
	if err != nil {
		return false, err
	}

	needsInput := false
	for _, act := range actions {
		if act.Type == domain.ActionRequestInput {
			needsInput = true
		}
	}
	return needsInput, nil
}

// Input reads one line. A JSON string is unquoted; anything else is returned raw.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.lines.next(ctx)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}
	return SanitizeInput(text)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode([]domain.ActionRequest{{Type: domain.ActionSystemMessage, Payload: msg}})
}
