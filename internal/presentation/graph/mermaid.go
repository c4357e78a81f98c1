// Package graph renders a site definition as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/humdrum/pkg/site"
)

// GraphOverlay highlights controllers touched by a dispatch.
type GraphOverlay struct {
	Visited []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart for def.
//
// Controllers are boxes listing their processes, the entry controller is a
// circle. Forward views are dotted edges between controllers; other views are
// leaf nodes. The default view uses a thick edge.
func GenerateMermaid(def *site.Definition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	entry := def.EntryName()
	for _, name := range def.Names() {
		spec := def.Controllers[name]
		id := sanitizeMermaidID(name)

		label := name
		if len(spec.Processes) > 0 {
			procs := make([]string, len(spec.Processes))
			for i, p := range spec.Processes {
				procs[i] = p.Name
			}
			label += "<br/><small>" + strings.Join(procs, " → ") + "</small>"
		}
		opener, closer := "[", "]"
		if name == entry {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escape(label), closer)

		for _, key := range spec.ViewKeys() {
			writeView(&sb, id, key, spec.Views[key], false)
		}
		if spec.Default != nil {
			writeView(&sb, id, "default", *spec.Default, true)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.Visited {
			id := sanitizeMermaidID(name)
			if id != "" && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func writeView(sb *strings.Builder, from, key string, v site.ViewSpec, isDefault bool) {
	label := escape(key)
	if target := v.Target(); target != "" {
		if isDefault {
			fmt.Fprintf(sb, "    %s == \"%s\" ==> %s\n", from, label, sanitizeMermaidID(target))
			return
		}
		fmt.Fprintf(sb, "    %s -. \"%s\" .-> %s\n", from, label, sanitizeMermaidID(target))
		return
	}

	leaf := from + "__" + sanitizeMermaidID(key)
	fmt.Fprintf(sb, "    %s[/\"%s\"/]\n", leaf, escape(v.Type))
	if isDefault {
		fmt.Fprintf(sb, "    %s == \"%s\" ==> %s\n", from, label, leaf)
		return
	}
	fmt.Fprintf(sb, "    %s -- \"%s\" --> %s\n", from, label, leaf)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}
