// Package stacktrace trims Go stack dumps down to this module's own frames so
// panic logs stay short.
package stacktrace

import (
	"runtime/debug"
	"strings"
)

const marker = "/internal/"

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" locations found
// in a raw stack trace, innermost first.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.Lines(string(stack)) {
		line = strings.TrimSpace(line)
		// File lines are tab-indented "path/file.go:NN +0xOFF".
		file, _, _ := strings.Cut(line, " ")
		if !strings.Contains(file, ".go:") {
			continue
		}
		idx := strings.Index(file, marker)
		if idx == -1 {
			continue
		}
		paths = append(paths, file[idx+1:])
	}

	return paths
}

// Capture returns the internal frames of the calling goroutine, or the full
// stack when none match.
func Capture() any {
	stack := debug.Stack()
	if paths := InternalPaths(stack); len(paths) > 0 {
		return paths
	}

	return string(stack)
}
