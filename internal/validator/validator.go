package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/humdrum/pkg/registry"
	"github.com/aretw0/humdrum/pkg/site"
)

// Severity ranks an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding about a site definition.
type Issue struct {
	Severity   Severity
	Controller string
	Message    string
}

func (i Issue) String() string {
	if i.Controller == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Controller, i.Message)
}

var knownTypes = map[string]bool{
	site.TypeText:     true,
	site.TypeMarkdown: true,
	site.TypeJSON:     true,
	site.TypeYAML:     true,
	site.TypeStatus:   true,
	site.TypeRedirect: true,
	site.TypeForward:  true,
	site.TypeNop:      true,
}

// Validate inspects def without building it.
//
// Errors are problems that make site.Build fail. Warnings flag definitions
// that build but probably do not do what was meant: forward cycles,
// controllers that can never render, unreachable controllers and processes
// naming a view the controller does not have.
func Validate(def *site.Definition, reg *registry.Registry) []Issue {
	var issues []Issue
	add := func(sev Severity, ctrl, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Controller: ctrl, Message: fmt.Sprintf(format, args...)})
	}

	if _, ok := def.Controllers[def.EntryName()]; !ok {
		add(SeverityError, "", "entry controller %q is not defined", def.EntryName())
	}

	for _, name := range def.Names() {
		spec := def.Controllers[name]

		for i, p := range spec.Processes {
			if reg != nil && !reg.Has(p.Name) {
				add(SeverityError, name, "process #%d: unknown process %q", i, p.Name)
			}
			if view, ok := p.Args["view"].(string); ok && view != "" {
				if _, exists := spec.Views[view]; !exists {
					add(SeverityWarning, name, "process #%d (%s) names view %q which is not registered; it will never decide", i, p.Name, view)
				}
			}
		}

		check := func(label string, v site.ViewSpec) {
			if !knownTypes[v.Type] {
				add(SeverityError, name, "%s: unknown view type %q", label, v.Type)
				return
			}
			if v.Type != site.TypeForward {
				return
			}
			target := v.Target()
			if target == "" {
				add(SeverityError, name, "%s: forward without target", label)
			} else if _, ok := def.Controllers[target]; !ok {
				add(SeverityError, name, "%s: forward target %q is not defined", label, target)
			}
		}
		for _, key := range spec.ViewKeys() {
			check(fmt.Sprintf("view %q", key), spec.Views[key])
		}
		if spec.Default != nil {
			check("default view", *spec.Default)
		}

		if len(spec.Views) == 0 && spec.Default == nil {
			add(SeverityWarning, name, "no views and no default view; every dispatch is a no-op")
		}
	}

	for _, cycle := range ForwardCycles(def) {
		add(SeverityWarning, cycle[0], "forward cycle %s", strings.Join(cycle, " -> "))
	}

	reachable := Reachable(def)
	for _, name := range def.Names() {
		if !reachable[name] {
			add(SeverityWarning, name, "not reachable from entry %q through forwards", def.EntryName())
		}
	}

	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// forwardTargets lists the distinct, defined forward targets of a controller
// in a stable order.
func forwardTargets(def *site.Definition, name string) []string {
	spec := def.Controllers[name]
	seen := make(map[string]bool)
	var out []string
	addTarget := func(v site.ViewSpec) {
		t := v.Target()
		if t == "" || seen[t] {
			return
		}
		if _, ok := def.Controllers[t]; !ok {
			return
		}
		seen[t] = true
		out = append(out, t)
	}
	for _, key := range spec.ViewKeys() {
		addTarget(spec.Views[key])
	}
	if spec.Default != nil {
		addTarget(*spec.Default)
	}
	return out
}

// Reachable returns the controllers reachable from the entry through forwards.
func Reachable(def *site.Definition) map[string]bool {
	visited := make(map[string]bool)
	entry := def.EntryName()
	if _, ok := def.Controllers[entry]; !ok {
		return visited
	}

	queue := []string{entry}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		queue = append(queue, forwardTargets(def, current)...)
	}
	return visited
}

// ForwardCycles returns each elementary forward cycle once, as the path from
// its smallest controller name back to itself.
func ForwardCycles(def *site.Definition) [][]string {
	var cycles [][]string
	seen := make(map[string]bool)

	names := def.Names()
	for _, start := range names {
		var path []string
		onPath := make(map[string]bool)

		var walk func(n string)
		walk = func(n string) {
			path = append(path, n)
			onPath[n] = true
			for _, t := range forwardTargets(def, n) {
				switch {
				case t == start:
					cycle := append(append([]string{}, path...), start)
					key := strings.Join(cycle, "\x00")
					if !seen[key] {
						seen[key] = true
						cycles = append(cycles, cycle)
					}
				case !onPath[t] && t > start:
					walk(t)
				}
			}
			path = path[:len(path)-1]
			onPath[n] = false
		}
		walk(start)
	}
	return cycles
}
