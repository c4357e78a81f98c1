package humdrum

import (
	_ "embed"
)

// Version is the release of this module. Callers usually trim the trailing
// newline.
//
//go:embed VERSION
var Version string
