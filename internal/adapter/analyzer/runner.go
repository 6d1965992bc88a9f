// Package analyzer runs the external analysis command that produces
// migration reports.
package analyzer

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Spec describes the command to run.
type Spec struct {
	Command string
	Args    []string
	// Dir is the working directory for the command.
	Dir string
	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string
}

// Result captures the outcome of one analysis run.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner executes analysis commands.
type Runner struct{}

// NewRunner constructs a Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the command described by spec. A non-zero exit code is not an
// error; it is reported in the Result so the caller can still parse whatever
// the command printed. Timeouts are enforced by the caller via ctx.
func (r *Runner) Run(ctx context.Context, spec Spec) (Result, error) {
	if spec.Command == "" {
		return Result{}, fmt.Errorf("no analysis command configured")
	}

	command := exec.CommandContext(ctx, spec.Command, spec.Args...)
	command.Dir = spec.Dir
	if len(spec.Env) > 0 {
		command.Env = append(command.Environ(), spec.Env...)
	}

	var stdout, stderr strings.Builder
	command.Stdout = &stdout
	command.Stderr = &stderr

	start := time.Now()
	err := command.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("running %q: %w", spec.Command, err)
	}

	return result, nil
}
