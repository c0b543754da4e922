package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/rootseek/pkg/domain"
)

// DefaultPrompt is printed when an input request carries no prompt of its own.
const DefaultPrompt = "> "

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	prompt string
	lines  *linePump
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	h.lines = newLinePump(h.Reader)

	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) Output(ctx context.Context, actions []domain.ActionRequest) (bool, error) {
	needsInput := false
	for _, act := range actions {
		switch act.Type {
		case domain.ActionRenderContent:
			msg, ok := act.Payload.(string)
			if !ok {
				continue
			}
			output := msg
			if h.Renderer != nil {
				if rendered, err := h.Renderer(msg); err == nil {
					output = rendered
				}
			}
			fmt.Fprintln(h.Writer, strings.TrimSpace(output))
		case domain.ActionSystemMessage:
			if msg, ok := act.Payload.(string); ok {
				if err := h.SystemOutput(ctx, msg); err != nil {
					return needsInput, err
				}
			}
		case domain.ActionRequestInput:
			needsInput = true
			h.prompt = ""
			if req, ok := act.Payload.(domain.InputRequest); ok {
				h.prompt = req.Prompt
			}
		}
	}
	return needsInput, nil
}

// Input prints the pending prompt and waits for one sanitized line.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	prompt := h.prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, prompt)
		}

		text, err := h.lines.next(ctx)
		if err != nil {
			return "", err
		}

		clean, err := SanitizeInput(strings.TrimSpace(text))
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			continue
		}
		return clean, nil
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}

type lineResult struct {
	text string
	err  error
}

// linePump reads lines on a goroutine so callers can stop waiting when their
// context ends. The goroutine lives until the reader is exhausted.
type linePump struct {
	reader *bufio.Reader
	ch     chan lineResult
	once   sync.Once
}

func newLinePump(r *bufio.Reader) *linePump {
	return &linePump{reader: r}
}

func (p *linePump) start() {
	p.once.Do(func() {
		p.ch = make(chan lineResult)
		go p.run()
	})
}

func (p *linePump) run() {
	for {
		text, err := p.reader.ReadString('\n')
		if text != "" {
			p.ch <- lineResult{text: text}
		}
		if err != nil {
			if err == io.EOF {
				close(p.ch)
				return
			}
			p.ch <- lineResult{err: err}
			// Backoff so a persistently failing reader does not spin.
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func (p *linePump) next(ctx context.Context) (string, error) {
	p.start()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.ch:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}
