// Package media wraps the external rendering and encoding tools.
package media

import (
	"context"
	"os/exec"
	"strings"

	"github.com/thywilljoshua/word2video/internal/apperr"
)

// Runner executes a program and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Exec runs the program with os/exec.
func Exec(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func run(ctx context.Context, r Runner, name string, args ...string) ([]byte, error) {
	if r == nil {
		r = Exec
	}
	out, err := r(ctx, name, args...)
	if err != nil {
		return out, apperr.External(name, err, "%s", tail(string(out), 400))
	}
	return out, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
