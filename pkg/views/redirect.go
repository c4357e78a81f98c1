package views

import (
	"context"
	"net/http"

	"github.com/aretw0/humdrum/pkg/domain"
)

// Redirect records a redirect on the model. Only front controllers that
// understand locations (HTTP) act on it. Code defaults to 302.
type Redirect struct {
	Location string
	Code     int
}

// Render implements domain.View.
func (v *Redirect) Render(ctx context.Context, _ *domain.Controller, req *domain.Request, m *domain.Model) error {
	code := v.Code
	if code == 0 {
		code = http.StatusFound
	}
	m.Status = code
	m.Location = Expand(v.Location, req, m)
	return nil
}
