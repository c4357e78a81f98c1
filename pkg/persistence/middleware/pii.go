package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/ports"
)

// Mask replaces the values of masked keys in stored models.
const Mask = "***"

type piiMiddleware struct {
	next     ports.ModelStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks the values of model keys matching any of the
// patterns before saving. The caller's model is left untouched, so the masked
// values only disappear from the next dispatch of the session.
func NewPIIMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid mask pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	return func(next ports.ModelStore) ports.ModelStore {
		return &piiMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, model *domain.Model) error {
	cloned := *model
	cloned.Data = deepCopyMap(model.Data)
	maskMap(cloned.Data, m.patterns)
	return m.next.Save(ctx, sessionID, &cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.Model, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if sub, ok := v.(map[string]any); ok && !masked {
			maskMap(sub, patterns)
		}
	}
}
