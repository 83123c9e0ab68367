// Package system provides the process and filesystem collaborators the
// installer steps run through.
package system

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Runner executes external commands, optionally demoted to another
// system user.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
	RunWithOutput(ctx context.Context, name string, args ...string) (string, error)
	RunShell(ctx context.Context, script string) (string, error)
}

// runner is the default implementation of Runner.
type runner struct {
	sudoUser string
	dir      string
	env      []string
	stdout   io.Writer
	stderr   io.Writer
}

// Option configures a runner.
type Option func(*runner)

// WithSudoUser makes every command run as the given system user via
// sudo instead of the invoking identity.
func WithSudoUser(user string) Option {
	return func(r *runner) {
		r.sudoUser = user
	}
}

// WithDir sets the working directory.
func WithDir(dir string) Option {
	return func(r *runner) {
		r.dir = dir
	}
}

// WithEnv appends environment variables.
func WithEnv(env []string) Option {
	return func(r *runner) {
		r.env = env
	}
}

// WithOutput sets custom output writers.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// NewRunner creates a command runner.
func NewRunner(options ...Option) Runner {
	r := &runner{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Run executes a command, streaming output to the configured writers.
func (r *runner) Run(ctx context.Context, name string, args ...string) error {
	cmd := r.command(ctx, name, args...)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	return runCommand(cmd)
}

// RunWithOutput executes a command and returns its combined output. The
// output is returned even when the command fails so callers can surface
// it to the operator.
func (r *runner) RunWithOutput(ctx context.Context, name string, args ...string) (string, error) {
	cmd := r.command(ctx, name, args...)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined
	err := runCommand(cmd)
	return strings.TrimSpace(combined.String()), err
}

// RunShell executes a shell script through bash -c and returns its
// combined output.
func (r *runner) RunShell(ctx context.Context, script string) (string, error) {
	return r.RunWithOutput(ctx, "bash", "-c", script)
}

func (r *runner) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	if r.sudoUser != "" {
		args = append([]string{"-u", r.sudoUser, "-H", name}, args...)
		name = "sudo"
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if r.dir != "" {
		cmd.Dir = r.dir
	}
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
	return cmd
}

func runCommand(cmd *exec.Cmd) error {
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return errors.Wrapf(err, "%s exited with code %d", cmd.Path, exitErr.ExitCode())
		}
		return errors.Wrapf(err, "failed to execute %s", cmd.Path)
	}
	return nil
}
