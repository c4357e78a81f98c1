// Package tui holds terminal presentation helpers for the CLI.
package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{" _                       _                       ", "#818cf8"},
	{"| |__  _   _ _ __ ___   __| |_ __ _   _ _ __ ___  ", "#a78bfa"},
	{"| '_ \\| | | | '_ ` _ \\ / _` | '__| | | | '_ ` _ \\ ", "#c084fc"},
	{"| | | | |_| | | | | | | (_| | |  | |_| | | | | | |", "#e879f9"},
	{"|_| |_|\\__,_|_| |_| |_|\\__,_|_|   \\__,_|_| |_| |_|", "#f472b6"},
}

// PrintBanner writes the humdrum banner to w, colored when the terminal
// supports it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
