// Package process runs allow-listed external commands as dispatch processes.
//
// A command receives the request params as HUMDRUM_PARAM_<NAME> and the model
// values as HUMDRUM_MODEL_<NAME> environment variables. Its stdout decides:
//
//	login                         plain text: the view name ("" continues)
//	{"view": "login", "set": {}}  JSON: view name plus model values to store
//
// A non-zero exit is an error of the dispatch.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/registry"
	"github.com/mitchellh/mapstructure"
)

// ErrNotRegistered is returned for commands missing from the allow-list.
var ErrNotRegistered = errors.New("command not registered")

const (
	EnvParamPrefix = "HUMDRUM_PARAM_"
	EnvModelPrefix = "HUMDRUM_MODEL_"
)

// Result is the JSON form of a command's output.
type Result struct {
	View string         `json:"view"`
	Set  map[string]any `json:"set"`
}

// Runner executes registered commands.
type Runner struct {
	commands map[string]CommandConfig
	baseDir  string
	timeout  time.Duration
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithCommands populates the allow-list from a loaded config.
func WithCommands(commands map[string]CommandConfig) RunnerOption {
	return func(r *Runner) {
		for name, c := range commands {
			c.Name = name
			r.commands[name] = c
		}
	}
}

// WithBaseDir sets the working directory for executed commands.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithTimeout bounds each execution.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// NewRunner creates a new Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		commands: make(map[string]CommandConfig),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name, command string, args ...string) {
	r.commands[name] = CommandConfig{Name: name, Command: command, Args: args}
}

// Has reports whether name is allowed.
func (r *Runner) Has(name string) bool {
	_, ok := r.commands[name]
	return ok
}

// Process returns a domain.Process running the named command.
func (r *Runner) Process(name string) (domain.Process, error) {
	if !r.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return domain.ProcessFunc(func(ctx context.Context, _ *domain.Controller, req *domain.Request, m *domain.Model) (string, error) {
		return r.Run(ctx, name, req, m)
	}), nil
}

// RegisterWith exposes the runner as the "exec" process with args {command: name}.
func (r *Runner) RegisterWith(reg *registry.Registry) {
	reg.Register("exec", func(args map[string]any) (domain.Process, error) {
		var o struct{ Command string }
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &o,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(args); err != nil {
			return nil, err
		}
		if o.Command == "" {
			return nil, errors.New("missing command")
		}
		return r.Process(o.Command)
	})
}

// Run executes the named command for one dispatch step and returns the view
// name it chose.
func (r *Runner) Run(ctx context.Context, name string, req *domain.Request, m *domain.Model) (string, error) {
	c, ok := r.commands[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), environment(c, req, m)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %s failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}

	res, err := parseOutput(stdout.String())
	if err != nil {
		return "", fmt.Errorf("command %s: %w", name, err)
	}
	for k, v := range res.Set {
		m.Set(k, v)
	}
	return res.View, nil
}

func environment(c CommandConfig, req *domain.Request, m *domain.Model) []string {
	var env []string
	for k, v := range c.Environment {
		env = append(env, k+"="+v)
	}
	if req != nil {
		for _, k := range req.Keys() {
			env = append(env, EnvParamPrefix+envName(k)+"="+req.Params[k])
		}
	}
	if m != nil {
		for k, v := range m.Data {
			env = append(env, EnvModelPrefix+envName(k)+"="+envValue(v))
		}
	}
	return env
}

func envName(k string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, k)
}

// envValue renders primitives with fmt and everything else as JSON.
func envValue(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case string, int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}

func parseOutput(out string) (Result, error) {
	trimmed := strings.TrimSpace(out)
	if strings.HasPrefix(trimmed, "{") {
		var res Result
		if err := json.Unmarshal([]byte(trimmed), &res); err != nil {
			return Result{}, fmt.Errorf("invalid JSON output: %w", err)
		}
		return res, nil
	}
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		trimmed = strings.TrimSpace(trimmed[:i])
	}
	return Result{View: trimmed}, nil
}
