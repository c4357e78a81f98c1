package humdrum

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aretw0/humdrum/internal/sanitize"
	"github.com/aretw0/humdrum/pkg/domain"
)

// Runner is an interactive front controller reading one request per line:
//
//	[controller] key=value key2=value2
//
// The controller defaults to Controller (or the entry controller). "exit" or
// "quit" ends the loop, as does EOF.
//
// With JSON set, lines may also be JSON Lines requests and every dispatch
// prints one Reply object. Prompts and the banner are off in that mode.
type Runner struct {
	Input      io.Reader
	Output     io.Writer
	Headless   bool
	JSON       bool
	Controller string
	Renderer   ContentRenderer
}

// LineRequest is the JSON form of one input line.
type LineRequest struct {
	Controller string            `json:"controller,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

// Reply is printed for each dispatch in JSON mode.
type Reply struct {
	Controller string `json:"controller,omitempty"`
	SessionID  string `json:"session_id"`
	Output     string `json:"output"`
	Status     int    `json:"status,omitempty"`
	Location   string `json:"location,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ContentRenderer transforms view output before it is printed, e.g. markdown
// to ANSI.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner over the given streams.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

// Run dispatches each input line in sessionID until the input ends.
// Dispatch errors are printed and the loop continues; I/O errors end it.
func (r *Runner) Run(ctx context.Context, app *App, sessionID string) error {
	if r.Input == nil {
		return errors.New("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return errors.New("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)
	sz := sanitize.New()
	quiet := r.Headless || r.JSON

	if !quiet {
		fmt.Fprintf(r.Output, "--- humdrum %s (session %s) ---\n", strings.TrimSpace(Version), sessionID)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprint(r.Output, "> ")
		}

		text, err := lines.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("input error: %w", err)
		}
		eof := err != nil

		switch line := strings.TrimSpace(text); line {
		case "":
		case "exit", "quit":
			if !quiet {
				fmt.Fprintln(r.Output, "Bye!")
			}
			return nil
		default:
			lr, err := r.parse(line)
			if err != nil {
				r.reply(Reply{SessionID: sessionID, Error: err.Error()})
				break
			}
			if lr.Controller == "" {
				lr.Controller = r.Controller
			}
			if lr.SessionID == "" {
				lr.SessionID = sessionID
			}
			r.dispatch(ctx, app, sz, lr)
		}

		if eof {
			return nil
		}
	}
}

// parse reads a JSON object line in JSON mode and the key=value syntax otherwise.
func (r *Runner) parse(line string) (LineRequest, error) {
	if r.JSON && strings.HasPrefix(line, "{") {
		var lr LineRequest
		if err := json.Unmarshal([]byte(line), &lr); err != nil {
			return lr, fmt.Errorf("invalid request: %w", err)
		}
		return lr, nil
	}
	name, params := ParseLine(line)
	return LineRequest{Controller: name, Params: params}, nil
}

func (r *Runner) dispatch(ctx context.Context, app *App, sz *sanitize.Sanitizer, lr LineRequest) {
	reply := Reply{Controller: lr.Controller, SessionID: lr.SessionID}
	params, err := sz.Map(lr.Params)
	if err != nil {
		reply.Error = err.Error()
		r.reply(reply)
		return
	}

	var buf bytes.Buffer
	req := domain.NewRequest(domain.SourceCLI, &buf)
	req.Params = params

	model, err := app.Dispatch(ctx, lr.Controller, lr.SessionID, req)
	if err != nil {
		reply.Error = err.Error()
		r.reply(reply)
		return
	}

	if r.JSON {
		reply.Output = buf.String()
		reply.Status = model.StatusCode()
		reply.Location = model.Location
		r.reply(reply)
		return
	}

	output := buf.String()
	if r.Renderer != nil {
		if rendered, err := r.Renderer(output); err == nil {
			output = rendered
		}
	}
	if out := strings.TrimSpace(output); out != "" {
		fmt.Fprintln(r.Output, out)
	}
	if model.Location != "" {
		fmt.Fprintf(r.Output, "[%d → %s]\n", model.StatusCode(), model.Location)
	} else if model.StatusCode() != http.StatusOK {
		fmt.Fprintf(r.Output, "[%d]\n", model.StatusCode())
	}
}

// reply prints errors in text mode and whole replies in JSON mode.
func (r *Runner) reply(rep Reply) {
	if !r.JSON {
		if rep.Error != "" {
			fmt.Fprintf(r.Output, "error: %s\n", rep.Error)
		}
		return
	}
	if err := json.NewEncoder(r.Output).Encode(rep); err != nil {
		fmt.Fprintf(r.Output, "error: %v\n", err)
	}
}

// ParseLine splits "ctrl k=v k2=v2" into the controller name and params.
// The first bare word is the controller; later bare words become flags with
// the value "true".
func ParseLine(line string) (string, map[string]string) {
	var name string
	params := make(map[string]string)
	for i, field := range strings.Fields(line) {
		if k, v, ok := strings.Cut(field, "="); ok {
			params[k] = v
			continue
		}
		if i == 0 {
			name = field
			continue
		}
		params[field] = "true"
	}
	return name, params
}
