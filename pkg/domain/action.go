package domain

import (
	"encoding/json"
	"fmt"
)

// ActionRequest represents a side-effect that the engine requests the host to perform.
type ActionRequest struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Standard Action Types
const (
	// ActionRenderContent requests the host to display content to the user.
	// Payload: string (the content)
	ActionRenderContent = "RENDER_CONTENT"

	// ActionRequestInput requests the host to collect input from the user.
	// Payload: InputRequest
	ActionRequestInput = "REQUEST_INPUT"

	// ActionRenderPlot requests the host to display a plot.
	// Payload: PlotRequest
	ActionRenderPlot = "RENDER_PLOT"

	// ActionSystemMessage represents a meta-message from the system (log, status, etc).
	// Payload: string (the message)
	ActionSystemMessage = "SYSTEM_MESSAGE"
)

// InputType defines the kind of input requested.
type InputType string

const (
	InputText    InputType = "text"
	InputNumber  InputType = "number"
	InputNumbers InputType = "numbers"
	InputConfirm InputType = "confirm"
)

// InputRequest describes the constraints and type of input needed.
type InputRequest struct {
	Type    InputType `json:"type"`
	Prompt  string    `json:"prompt"`
	Options []string  `json:"options,omitempty"`
}

// PlotKind selects what a plot shows.
type PlotKind string

const (
	// PlotCurve shows one equation, optionally with its roots marked.
	PlotCurve PlotKind = "curve"
	// PlotIntersection shows two equations and their intersection marker.
	PlotIntersection PlotKind = "intersection"
)

// PlotRequest asks the display sink to draw curves and markers.
type PlotRequest struct {
	Kind      PlotKind     `json:"kind"`
	Title     string       `json:"title"`
	Equations []EquationID `json:"equations"`
	Markers   []Point      `json:"markers,omitempty"`
	XMin      float64      `json:"x_min"`
	XMax      float64      `json:"x_max"`
}

// Content builds a RENDER_CONTENT action.
func Content(format string, args ...any) ActionRequest {
	return ActionRequest{Type: ActionRenderContent, Payload: fmt.Sprintf(format, args...)}
}

// Plot builds a RENDER_PLOT action.
func Plot(req PlotRequest) ActionRequest {
	return ActionRequest{Type: ActionRenderPlot, Payload: req}
}

// Ask builds a REQUEST_INPUT action.
func Ask(t InputType, prompt string, options ...string) ActionRequest {
	return ActionRequest{Type: ActionRequestInput, Payload: InputRequest{Type: t, Prompt: prompt, Options: options}}
}

// UnmarshalJSON restores typed payloads after a round trip through a store.
func (a *ActionRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Type = raw.Type
	a.Payload = nil
	if len(raw.Payload) == 0 || string(raw.Payload) == "null" {
		return nil
	}

	switch raw.Type {
	case ActionRenderPlot:
		var p PlotRequest
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return fmt.Errorf("failed to decode plot payload: %w", err)
		}
		a.Payload = p
	case ActionRequestInput:
		var in InputRequest
		if err := json.Unmarshal(raw.Payload, &in); err != nil {
			return fmt.Errorf("failed to decode input payload: %w", err)
		}
		a.Payload = in
	default:
		var s string
		if err := json.Unmarshal(raw.Payload, &s); err == nil {
			a.Payload = s
			return nil
		}
		var v any
		if err := json.Unmarshal(raw.Payload, &v); err != nil {
			return err
		}
		a.Payload = v
	}
	return nil
}
