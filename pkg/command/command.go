package command

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner executes external tools. Tests replace it with a stub.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

var _ Runner = Exec{}

type Exec struct{}

// Run executes name and returns its stdout. A failing command returns an error carrying the start of
// its stderr.
func (Exec) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if err != nil {
		slog.ErrorContext(ctx, "exec failed", "cmd", name, "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return nil, fmt.Errorf("%s: %w: %s", name, err, truncate(strings.TrimSpace(stderr.String()), 1<<10))
	}

	slog.DebugContext(ctx, "exec ok", "cmd", name, "args", strings.Join(args, " "), "duration_ms", time.Since(start).Milliseconds())

	return stdout.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	return s[:max] + "...(truncated)"
}
