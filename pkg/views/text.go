package views

import (
	"context"
	"io"

	"github.com/aretw0/humdrum/pkg/domain"
)

// Text writes its body after expansion.
type Text struct {
	Body string
}

// NewText creates a Text view.
func NewText(body string) *Text {
	return &Text{Body: body}
}

// Render implements domain.View.
func (v *Text) Render(ctx context.Context, _ *domain.Controller, req *domain.Request, m *domain.Model) error {
	_, err := io.WriteString(req.Out, Expand(v.Body, req, m))
	return err
}

// Status sets the response status and writes an optional body.
type Status struct {
	Code int
	Body string
}

// Render implements domain.View.
func (v *Status) Render(ctx context.Context, _ *domain.Controller, req *domain.Request, m *domain.Model) error {
	m.Status = v.Code
	if v.Body == "" {
		return nil
	}
	_, err := io.WriteString(req.Out, Expand(v.Body, req, m))
	return err
}
