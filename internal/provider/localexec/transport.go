// Package localexec implements the provider transport that invokes the
// provider scripts as local subprocesses.
package localexec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/skygate/skygate/internal/provider"
)

// TransportName identifies this transport variant.
const TransportName = "local"

// TransportConfig holds configuration for the local transport.
type TransportConfig struct {
	// Interpreter is the program used to run provider scripts.
	Interpreter string

	// ScriptDir is the directory holding the provider scripts.
	ScriptDir string

	// Timeout bounds each invocation. Default: provider.DefaultTimeout.
	Timeout time.Duration

	// Logger for invocation diagnostics.
	Logger zerolog.Logger
}

// Transport invokes provider operations by spawning the matching script with
// the operation's parameters as positional arguments and capturing stdout.
type Transport struct {
	interpreter string
	scriptDir   string
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewTransport creates a new local process transport.
func NewTransport(cfg TransportConfig) *Transport {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = provider.DefaultTimeout
	}

	return &Transport{
		interpreter: cfg.Interpreter,
		scriptDir:   cfg.ScriptDir,
		timeout:     timeout,
		logger:      cfg.Logger,
	}
}

// Name returns the transport variant name.
func (t *Transport) Name() string {
	return TransportName
}

// Invoke runs the operation's script and returns its stdout. Output on stderr
// is logged but is not by itself a failure; only a non-zero exit status (or a
// timeout) is.
func (t *Transport) Invoke(ctx context.Context, op provider.Operation, params provider.Params) ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("unknown provider operation %q", op)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	script := filepath.Join(t.scriptDir, op.Script())
	argv := append([]string{script}, params.Argv(op)...)

	cmd := exec.CommandContext(ctx, t.interpreter, argv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	if stderr.Len() > 0 {
		t.logger.Debug().
			Str("operation", string(op)).
			Str("script", script).
			Str("stderr", stderr.String()).
			Msg("provider script wrote to stderr")
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("provider script %s timed out after %s", op.Script(), t.timeout)
		}
		return nil, fmt.Errorf("provider script %s failed: %w (stderr: %s)", op.Script(), err, stderr.String())
	}

	t.logger.Debug().
		Str("operation", string(op)).
		Dur("duration", time.Since(start)).
		Int("bytes", stdout.Len()).
		Msg("provider script completed")

	return stdout.Bytes(), nil
}
