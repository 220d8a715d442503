// Package runner executes resolved commands as child processes.
//
// Execution never surfaces an error through control flow: a non-zero exit, a
// missing binary, and any other OS-level failure are all ordinary data in the
// returned Result. Callers inspect ExitCode and decide whether to escalate.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/unicmd/unicmd/pkg/adapter"
	"github.com/unicmd/unicmd/pkg/telemetry"
)

// Result captures everything a caller may want to know about one execution.
type Result struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// OK reports whether the command exited cleanly.
func (r Result) OK() bool { return r.ExitCode == 0 }

// Executor runs one resolved command per call. Modules depend on this
// interface so tests can substitute a fake.
type Executor interface {
	Run(ctx context.Context, cmd adapter.ResolvedCommand) Result
}

// Runner is the real Executor: one synchronous child process per call, no
// shell in between.
type Runner struct {
	lookPath func(file string) (string, error)
	euid     func() int
	log      zerolog.Logger
}

// New returns a Runner bound to the real PATH and process credentials.
func New() *Runner {
	return &Runner{
		lookPath: exec.LookPath,
		euid:     os.Geteuid,
		log:      telemetry.Component("runner"),
	}
}

// effectiveArgv applies the privilege prefix unless the process already runs
// as root.
func (r *Runner) effectiveArgv(cmd adapter.ResolvedCommand) []string {
	if cmd.RequiresPrivilege && r.euid() == 0 {
		return cmd.Argv
	}
	return cmd.Privileged()
}

// Run executes the command and returns a fully populated Result.
func (r *Runner) Run(ctx context.Context, cmd adapter.ResolvedCommand) Result {
	argv := r.effectiveArgv(cmd)
	if len(argv) == 0 {
		return Result{ExitCode: 1, Stderr: "empty command"}
	}

	if _, err := r.lookPath(argv[0]); err != nil {
		return Result{ExitCode: 1, Stderr: "command not found: " + argv[0]}
	}

	r.log.Debug().Strs("argv", argv).Msg("Executing command")

	proc := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	err := proc.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
			if result.Stderr == "" {
				result.Stderr = err.Error()
			}
		}
	}

	return result
}
