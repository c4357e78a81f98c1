package views

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Markdown writes its expanded body. On a terminal the body is rendered with
// glamour; elsewhere (HTTP, pipes, files) the raw markdown is written.
type Markdown struct {
	Body string

	// Styled forces terminal rendering on or off. Nil means detect.
	Styled *bool
	// WordWrap is passed to glamour. Zero keeps glamour's default.
	WordWrap int
}

// NewMarkdown creates a Markdown view.
func NewMarkdown(body string) *Markdown {
	return &Markdown{Body: body}
}

// Render implements domain.View.
func (v *Markdown) Render(ctx context.Context, _ *domain.Controller, req *domain.Request, m *domain.Model) error {
	body := Expand(v.Body, req, m)

	if !v.styled(req.Out) {
		_, err := io.WriteString(req.Out, body)
		return err
	}

	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if v.WordWrap > 0 {
		opts = append(opts, glamour.WithWordWrap(v.WordWrap))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(body)
	if err != nil {
		return fmt.Errorf("markdown render: %w", err)
	}
	_, err = io.WriteString(req.Out, out)
	return err
}

func (v *Markdown) styled(w io.Writer) bool {
	if v.Styled != nil {
		return *v.Styled
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
