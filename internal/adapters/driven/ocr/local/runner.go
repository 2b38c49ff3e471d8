package local

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/custodia-labs/clausewise/internal/logger"
)

// Runner lets tests stub external commands.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if err != nil {
		logger.Debug("exec %s %s failed after %s: %v (%s)",
			name, strings.Join(args, " "), time.Since(start), err, truncate(errb.String(), 2<<10))
	} else {
		logger.Debug("exec %s ok in %s (%d bytes)", name, time.Since(start), out.Len())
	}
	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
