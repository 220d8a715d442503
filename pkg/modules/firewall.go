package modules

import (
	"context"

	"github.com/unicmd/unicmd/pkg/adapter"
	"github.com/unicmd/unicmd/pkg/params"
)

// FirewallModule manages firewall rules through firewalld, ufw, or iptables.
type FirewallModule struct {
	deps     Deps
	adapter  *adapter.Adapter
	resolver *params.Resolver
}

// NewFirewall constructs the firewall module.
func NewFirewall(deps Deps) *FirewallModule {
	return &FirewallModule{
		deps:     deps,
		adapter:  adapter.New(deps.Env),
		resolver: params.NewResolver("firewall"),
	}
}

func (m *FirewallModule) Name() string        { return "firewall" }
func (m *FirewallModule) Description() string { return "Manage firewall rules" }

func (m *FirewallModule) Actions() map[string]string {
	return map[string]string{
		"add":  "Add a firewall rule",
		"del":  "Delete a firewall rule",
		"list": "List active firewall rules",
	}
}

// Execute resolves and runs one firewall action. table and chain only apply
// to iptables backends and default there to filter/INPUT.
func (m *FirewallModule) Execute(ctx context.Context, action, target string, params map[string]string) int {
	if _, ok := m.Actions()[action]; !ok {
		return unknownAction(m.deps, m.Name(), action)
	}

	options := map[string]string{}
	if table := m.resolver.Resolve("table", action, params, ""); table != "" {
		options["table"] = table
	}
	if chain := m.resolver.Resolve("chain", action, params, ""); chain != "" {
		options["chain"] = chain
	}
	cmd, err := m.adapter.Build(adapter.DomainFirewall, action, target, options)
	if err != nil {
		return emitError(m.deps, m.Name(), err.Error())
	}
	return emitResult(m.deps, m.Name(), m.deps.Exec.Run(ctx, cmd))
}
