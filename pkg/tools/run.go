package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/model"
)

// TempRoot is the parent of the per-call work directories; empty means os.TempDir().
var TempRoot string

// withWorkDir runs fn inside a fresh directory that is removed afterwards,
// whatever fn returns.
func withWorkDir(prefix string, fn func(dir string) error) (err error) {
	dir, err := os.MkdirTemp(TempRoot, prefix+"-")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil && err == nil {
			err = fmt.Errorf("remove work dir: %w", rmErr)
		}
	}()
	return fn(dir)
}

// runTool executes a tool and blocks until it exits. A non-zero exit becomes
// a *model.ToolError carrying the captured stderr.
func runTool(ctx context.Context, tool, executable string, args []string, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, executable, args...)

	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	logger.Debug("Running external tool", zap.String("tool", tool), zap.Strings("args", args))

	if err := cmd.Run(); err != nil {
		return &model.ToolError{Tool: tool, Args: args, Stderr: stderr.String(), Err: err}
	}
	return nil
}
