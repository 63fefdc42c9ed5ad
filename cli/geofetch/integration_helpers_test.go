//go:build integration

package main

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/glorpus-work/geofetch/internal/logger"
)

// runCLI executes the root command with args and returns what it wrote to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	logger.SetTestOutput(io.Discard)
	t.Cleanup(logger.UnsetTestOutput)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
