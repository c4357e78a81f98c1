package domain

import (
	"io"
	"sort"
)

// Source identifies the front controller that built a Request.
type Source string

const (
	SourceHTTP Source = "http"
	SourceCLI  Source = "cli"
	SourceMCP  Source = "mcp"
	SourceTest Source = "test"
)

// Request carries the input of one dispatch cycle.
// Processes may modify Params; views write their output to Out.
type Request struct {
	Source Source
	Method string
	Params map[string]string
	Out    io.Writer
}

// NewRequest creates a Request writing to out.
func NewRequest(src Source, out io.Writer) *Request {
	if out == nil {
		out = io.Discard
	}
	return &Request{
		Source: src,
		Params: make(map[string]string),
		Out:    out,
	}
}

// Param returns the named parameter and whether it was present.
func (r *Request) Param(key string) (string, bool) {
	v, ok := r.Params[key]
	return v, ok
}

// Set stores a parameter.
func (r *Request) Set(key, value string) {
	if r.Params == nil {
		r.Params = make(map[string]string)
	}
	r.Params[key] = value
}

// Keys returns the parameter names in sorted order.
func (r *Request) Keys() []string {
	keys := make([]string, 0, len(r.Params))
	for k := range r.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
