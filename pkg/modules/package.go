package modules

import (
	"context"

	"github.com/unicmd/unicmd/pkg/adapter"
	"github.com/unicmd/unicmd/pkg/params"
)

// PackageModule manages system packages through whichever package manager the
// host carries.
type PackageModule struct {
	deps     Deps
	adapter  *adapter.Adapter
	resolver *params.Resolver
}

// NewPackage constructs the package module.
func NewPackage(deps Deps) *PackageModule {
	return &PackageModule{
		deps:     deps,
		adapter:  adapter.New(deps.Env),
		resolver: params.NewResolver("package"),
	}
}

func (m *PackageModule) Name() string        { return "package" }
func (m *PackageModule) Description() string { return "Manage system packages" }

func (m *PackageModule) Actions() map[string]string {
	return map[string]string{
		"install": "Install a package",
		"remove":  "Remove an installed package",
		"update":  "Refresh package metadata, or upgrade with upgrade:true",
		"search":  "Search available packages",
		"info":    "Show details for one package",
		"list":    "List installed packages",
	}
}

// Execute resolves and runs one package action.
func (m *PackageModule) Execute(ctx context.Context, action, target string, params map[string]string) int {
	if _, ok := m.Actions()[action]; !ok {
		return unknownAction(m.deps, m.Name(), action)
	}

	options := map[string]string{}
	for k, v := range params {
		options[k] = v
	}
	// upgrade is a resolved boolean, not a pass-through flag: the persisted
	// config can turn it on for hosts that always want full upgrades.
	delete(options, "upgrade")
	if action == "update" && m.resolver.ResolveBool("upgrade", action, params, false) {
		options["upgrade"] = "true"
	}

	cmd, err := m.adapter.Build(adapter.DomainPackage, action, target, options)
	if err != nil {
		return emitError(m.deps, m.Name(), err.Error())
	}
	return emitResult(m.deps, m.Name(), m.deps.Exec.Run(ctx, cmd))
}
