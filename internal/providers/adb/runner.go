package adb

import (
	"bufio"
	"context"
	"iter"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const maxLineSize = 1024 * 1024

// Runner starts adb and streams its merged stdout/stderr line by line.
type Runner interface {
	// Lines runs adb with args, prefixed by "-s serial" when serial is non-empty.
	// The process starts on the first pull and is terminated as soon as the
	// range loop ends, whichever way it ends. A failure is yielded once as an
	// *Error of KindExecution and ends the sequence.
	Lines(ctx context.Context, serial string, args ...string) iter.Seq2[string, error]
}

// ToolPath returns the adb executable inside an Android SDK root.
func ToolPath(sdkRoot string) string {
	return filepath.Join(sdkRoot, "platform-tools", binaryName(runtime.GOOS))
}

func binaryName(goos string) string {
	if goos == "windows" {
		return "adb.exe"
	}
	return "adb"
}

// ExecRunner runs a local adb binary.
type ExecRunner struct {
	Path string
	// Timeout bounds each invocation; zero means no limit.
	Timeout time.Duration
}

// NewExecRunner creates an ExecRunner for the adb binary at path.
func NewExecRunner(path string, timeout time.Duration) *ExecRunner {
	return &ExecRunner{Path: path, Timeout: timeout}
}

func commandArgs(serial string, args []string) []string {
	full := make([]string, 0, len(args)+2)
	if serial != "" {
		full = append(full, "-s", serial)
	}
	return append(full, args...)
}

// Lines implements Runner.
func (r *ExecRunner) Lines(ctx context.Context, serial string, args ...string) iter.Seq2[string, error] {
	argv := commandArgs(serial, args)
	return func(yield func(string, error) bool) {
		if ctx == nil {
			ctx = context.Background()
		}
		runCtx, cancel := ctx, context.CancelFunc(func() {})
		if r.Timeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		}
		defer cancel()

		reader, writer, err := os.Pipe()
		if err != nil {
			yield("", executionError(errors.Wrap(err, "create output pipe"), ""))
			return
		}
		cmd := exec.CommandContext(runCtx, r.Path, argv...)
		cmd.Stdout = writer
		cmd.Stderr = writer
		logger := log.With().Str("adb", r.Path).Strs("args", argv).Logger()
		logger.Debug().Msg("starting adb")
		if err := cmd.Start(); err != nil {
			writer.Close()
			reader.Close()
			logger.Error().Err(err).Msg("could not start adb")
			yield("", executionError(errors.Wrap(err, "start adb"), ""))
			return
		}
		// the child holds its own copy of the write end
		writer.Close()

		reaped := false
		var waitErr error
		stop := func() {
			if reaped {
				return
			}
			reaped = true
			if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				logger.Debug().Err(err).Msg("kill adb")
			}
			reader.Close()
			if waitErr = cmd.Wait(); waitErr != nil {
				logger.Debug().Err(waitErr).Msg("adb exited")
			}
		}
		defer stop()

		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			// once the deadline has killed adb, lines left in the pipe are stale
			if err := runCtx.Err(); err != nil {
				stop()
				yield("", timeoutError(err))
				return
			}
			line := strings.TrimRight(scanner.Text(), "\r")
			logger.Debug().Str("line", line).Msg("adb output")
			if !yield(line, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Error().Err(err).Msg("could not read adb output")
			stop()
			yield("", executionError(errors.Wrap(err, "read adb output"), ""))
			return
		}
		ctxErr := runCtx.Err()
		stop()
		// a process that exited on its own before the deadline fired waits cleanly
		if ctxErr != nil && waitErr != nil {
			yield("", timeoutError(ctxErr))
		}
	}
}

func timeoutError(err error) *Error {
	return executionError(errors.Wrap(err, "wait for adb output"), "adb did not finish in time")
}
