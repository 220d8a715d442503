package modules

import (
	"context"

	"github.com/unicmd/unicmd/pkg/adapter"
	"github.com/unicmd/unicmd/pkg/params"
)

// FileModule wraps the coreutils file operations. These run as the invoking
// user; paths the user cannot touch fail with the tool's own diagnostic
// rather than being silently escalated.
type FileModule struct {
	deps     Deps
	resolver *params.Resolver
}

// NewFile constructs the file module.
func NewFile(deps Deps) *FileModule {
	return &FileModule{deps: deps, resolver: params.NewResolver("file")}
}

func (m *FileModule) Name() string        { return "file" }
func (m *FileModule) Description() string { return "Copy, move, delete, and create files" }

func (m *FileModule) Actions() map[string]string {
	return map[string]string{
		"copy":  "Copy a file or tree to dest:PATH",
		"move":  "Move a file or tree to dest:PATH",
		"del":   "Delete a file or tree",
		"mkdir": "Create a directory",
	}
}

func (m *FileModule) Execute(ctx context.Context, action, target string, params map[string]string) int {
	if _, ok := m.Actions()[action]; !ok {
		return unknownAction(m.deps, m.Name(), action)
	}
	if target == "" {
		return emitError(m.deps, m.Name(), "path required")
	}

	var argv []string
	switch action {
	case "copy":
		dest := m.resolver.Resolve("dest", action, params, "")
		if dest == "" {
			return emitError(m.deps, m.Name(), "copy requires a dest parameter")
		}
		argv = []string{"cp"}
		archive := m.resolver.ResolveBool("archive", action, params, true)
		if archive {
			argv = append(argv,
				"--no-dereference",
				"--preserve=mode,ownership,timestamps,xattr,context")
		}
		// Archive mode already implies a full tree copy, so recursive only
		// matters on its own.
		if archive || m.resolver.ResolveBool("recursive", action, params, true) {
			argv = append(argv, "--recursive")
		}
		if m.resolver.ResolveBool("verbose", action, params, true) {
			argv = append(argv, "--verbose")
		}
		if m.resolver.ResolveBool("update", action, params, false) {
			argv = append(argv, "--update")
		}
		argv = append(argv, target, dest)

	case "move":
		dest := m.resolver.Resolve("dest", action, params, "")
		if dest == "" {
			return emitError(m.deps, m.Name(), "move requires a dest parameter")
		}
		argv = []string{"mv"}
		if m.resolver.ResolveBool("force", action, params, false) {
			argv = append(argv, "-f")
		}
		argv = append(argv, target, dest)

	case "del":
		argv = []string{"rm"}
		if m.resolver.ResolveBool("recursive", action, params, false) {
			argv = append(argv, "-r")
		}
		if m.resolver.ResolveBool("force", action, params, false) {
			argv = append(argv, "-f")
		}
		argv = append(argv, target)

	case "mkdir":
		argv = []string{"mkdir"}
		if m.resolver.ResolveBool("parents", action, params, false) {
			argv = append(argv, "-p")
		}
		argv = append(argv, "-m", m.resolver.Resolve("mode", action, params, "755"), target)
	}

	res := m.deps.Exec.Run(ctx, adapter.ResolvedCommand{Argv: argv})
	return emitResult(m.deps, m.Name(), res)
}
