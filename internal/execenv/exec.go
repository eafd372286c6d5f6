// Package execenv runs a child process with resolved secrets added to its
// environment.
package execenv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	dserrors "github.com/systmms/secretchain/internal/errors"
	"github.com/systmms/secretchain/internal/logging"
	"github.com/systmms/secretchain/pkg/provider"
)

// Executor runs commands with secrets injected as environment variables.
type Executor struct {
	logger *logging.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Environ defaults to os.Environ.
	Environ func() []string
}

// New creates an executor wired to the process's standard streams.
func New(logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Executor{
		logger:  logger,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Environ: os.Environ,
	}
}

// Options configures one Exec call.
type Options struct {
	Command []string
	Secrets map[string]*provider.SecretValue
	// KeepExisting leaves variables already set in the environment alone
	// instead of replacing them with the resolved value.
	KeepExisting bool
	// PrintVars writes the injected names with masked values to Stderr.
	PrintVars bool
	Dir       string
}

// ExitError reports a child that ran but exited non-zero.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

// Exec runs options.Command and waits for it. Cancelling ctx kills the
// child.
func (e *Executor) Exec(ctx context.Context, options Options) error {
	if len(options.Command) == 0 {
		return dserrors.UserError{
			Message:    "No command specified",
			Suggestion: "Provide a command after -- (e.g., secretchain exec -- ./server)",
		}
	}

	name := options.Command[0]
	if _, err := exec.LookPath(name); err != nil {
		return dserrors.UserError{
			Message:    fmt.Sprintf("Command '%s' not found", name),
			Suggestion: "Check that the command is installed and on your PATH",
			Err:        err,
		}
	}

	if options.PrintVars {
		e.printEnvironment(options.Secrets)
	}

	cmd := exec.CommandContext(ctx, name, options.Command[1:]...)
	cmd.Env = e.buildEnvironment(options.Secrets, options.KeepExisting)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	cmd.Dir = options.Dir

	e.logger.Debug("Executing command: %s", strings.Join(options.Command, " "))
	e.logger.Debug("Injected %d secret(s)", len(options.Secrets))

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Command: name, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to run %s: %w", name, err)
	}

	return nil
}

// buildEnvironment merges the secrets into the current environment and
// returns it sorted.
func (e *Executor) buildEnvironment(secrets map[string]*provider.SecretValue, keepExisting bool) []string {
	env := make(map[string]string)
	for _, kv := range e.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			env[key] = value
		}
	}

	for key, secret := range secrets {
		if _, exists := env[key]; exists && keepExisting {
			continue
		}
		env[key] = secret.Value
	}

	result := make([]string, 0, len(env))
	for key, value := range env {
		result = append(result, key+"="+value)
	}
	sort.Strings(result)
	return result
}

func (e *Executor) printEnvironment(secrets map[string]*provider.SecretValue) {
	if len(secrets) == 0 {
		fmt.Fprintln(e.Stderr, "No secrets resolved")
		return
	}

	keys := make([]string, 0, len(secrets))
	for key := range secrets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(e.Stderr, "Injecting %d secret(s):\n", len(secrets))
	for _, key := range keys {
		fmt.Fprintf(e.Stderr, "  %s=%s\n", key, logging.Mask(secrets[key].Value))
	}
}
