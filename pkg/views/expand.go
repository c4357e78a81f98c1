package views

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/humdrum/pkg/domain"
)

const paramPrefix = "param."

// Expand replaces ${key} with model values and ${param.key} with request
// parameters. Unknown references expand to "".
func Expand(body string, req *domain.Request, m *domain.Model) string {
	return os.Expand(body, func(name string) string {
		if p, ok := strings.CutPrefix(name, paramPrefix); ok {
			if req == nil {
				return ""
			}
			v, _ := req.Param(p)
			return v
		}
		if m == nil {
			return ""
		}
		v, ok := m.Get(name)
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
}
