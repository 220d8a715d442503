// Package modules implements the per-domain builders that consume the
// command translation engine. Each module resolves its parameters through the
// layered config chain, asks the adapter for a concrete command, hands it to
// the executor, and reports the outcome through the output envelope.
package modules

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/unicmd/unicmd/pkg/envelope"
	"github.com/unicmd/unicmd/pkg/platform"
	"github.com/unicmd/unicmd/pkg/runner"
)

// Module is one domain surface of the tool.
type Module interface {
	// Name is the module identifier used on the command line, in config
	// file names, and in the output envelope.
	Name() string

	// Description is a one-line summary for help output.
	Description() string

	// Actions maps each supported action to its description.
	Actions() map[string]string

	// Execute performs one action and returns the process exit code. All
	// failure paths end in an emitted error envelope (or raw diagnostics),
	// never a panic or an unreported error.
	Execute(ctx context.Context, action, target string, params map[string]string) int
}

// Deps bundles the engine collaborators every module consumes.
type Deps struct {
	Env     platform.Environment
	Exec    runner.Executor
	Emitter *envelope.Emitter
	Format  envelope.Format
}

func (d Deps) format() envelope.Format {
	if d.Format == "" {
		return envelope.FormatTOML
	}
	return d.Format
}

// emitResult renders one execution result in the selected output format,
// parsing stdout into structured data for the envelope.
func emitResult(d Deps, module string, res runner.Result) int {
	return emitResultData(d, module, res, nil)
}

// emitResultData is emitResult with caller-supplied envelope data replacing
// the parsed stdout.
func emitResultData(d Deps, module string, res runner.Result, data map[string]any) int {
	if d.format() == envelope.FormatRaw {
		return d.Emitter.Raw(res.Stdout, res.Stderr, res.ExitCode)
	}
	if !res.OK() {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = fmt.Sprintf("command exited with status %d", res.ExitCode)
		}
		return d.Emitter.Error(module, "command failed: "+msg, res.ExitCode)
	}
	if data == nil {
		data = envelope.ParseOutput(res.Stdout)
	}
	return d.Emitter.Success(module, data)
}

// emitError reports a failure that happened before any command ran, such as
// an adapter build error or a missing required parameter.
func emitError(d Deps, module, message string) int {
	return d.Emitter.Error(module, message, 1)
}

func unknownAction(d Deps, module, action string) int {
	return emitError(d, module, fmt.Sprintf("unknown action %q", action))
}

// Registry holds every domain module, wired to shared collaborators.
type Registry struct {
	mods map[string]Module
}

// NewRegistry constructs all modules against the given dependencies.
func NewRegistry(deps Deps) *Registry {
	r := &Registry{mods: map[string]Module{}}
	for _, m := range []Module{
		NewPackage(deps),
		NewService(deps),
		NewFirewall(deps),
		NewGroup(deps),
		NewFile(deps),
	} {
		r.mods[m.Name()] = m
	}
	return r
}

// Get returns the named module.
func (r *Registry) Get(name string) (Module, bool) {
	m, ok := r.mods[name]
	return m, ok
}

// Names lists the registered modules in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.mods))
	for name := range r.mods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
