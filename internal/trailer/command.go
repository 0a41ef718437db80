package trailer

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/chainguard-dev/clog"
)

// argPlaceholder is the textual substitution point for a command's
// argument. Substitution is purely textual: this is an intentional
// injection surface inherited from the source tool, not papered over with
// quoting. Configure trailer commands only from trusted configuration.
const argPlaceholder = "$ARG"

// Executor runs a shell command line and returns its captured, trimmed
// stdout. Production code uses DefaultExecutor; tests substitute a fake
// modeled on internal/jjtest's Scenario/Call pattern from the teacher repo.
type Executor func(ctx context.Context, command string) (string, error)

// DefaultExecutor is the Executor cmd/vcsmaint wires into the driver.
var DefaultExecutor Executor = shellExecutor

// shellExecutor runs command in a child shell with no standard input,
// following spec.md §4.5: the child inherits the process environment but
// reads no input from the engine.
func shellExecutor(ctx context.Context, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &commandError{command: command, stderr: stderr.String(), cause: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}

type commandError struct {
	command string
	stderr  string
	cause   error
}

func (e *commandError) Error() string {
	return "command failed: " + e.command + ": " + e.cause.Error() + "\nstderr: " + e.stderr
}

func (e *commandError) Unwrap() error { return e.cause }

// ApplyCommand runs command, first substituting the first occurrence of
// $ARG with arg if hasArg is true, and returns the trimmed stdout. On
// failure it logs a non-fatal warning and returns an empty string: a
// misbehaving configured command must never abort the merge (spec.md §7).
func ApplyCommand(ctx context.Context, exec Executor, command string, arg string, hasArg bool) string {
	if hasArg {
		command = strings.Replace(command, argPlaceholder, arg, 1)
	}
	out, err := exec(ctx, command)
	if err != nil {
		clog.FromContext(ctx).Warn("trailer command failed, using empty value", "command", command, "error", err)
		return ""
	}
	return out
}
