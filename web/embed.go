// Package web holds the static viewer page served at /.
package web

import _ "embed"

// IndexHTML is the single-page map viewer and editor
//
//go:embed index.html
var IndexHTML []byte
