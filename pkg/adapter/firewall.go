package adapter

import (
	"strings"

	"github.com/unicmd/unicmd/pkg/platform"
)

// Firewall rule syntax differs structurally per backend: firewalld expects
// key=value rules ("port=80/tcp", "service=http"), ufw takes its own rule
// phrases verbatim, and iptables takes raw flag strings appended after the
// table/chain selectors.

func (a *Adapter) buildFirewall(action, rule string, options map[string]string) (ResolvedCommand, error) {
	switch a.env.FirewallManager {
	case platform.FwFirewalld:
		return buildFirewalldCommand(action, rule)
	case platform.FwUFW:
		return buildUFWCommand(action, rule)
	default:
		return buildIptablesCommand(action, rule, options)
	}
}

func buildFirewalldCommand(action, rule string) (ResolvedCommand, error) {
	if action == "list" {
		return ResolvedCommand{Argv: []string{"firewall-cmd", "--list-all"}}, nil
	}

	var flags map[string]string
	switch action {
	case "add":
		flags = map[string]string{"port": "--add-port", "service": "--add-service"}
	case "del":
		flags = map[string]string{"port": "--remove-port", "service": "--remove-service"}
	default:
		return ResolvedCommand{}, errUnsupportedf("firewall backend %q does not support action %q", platform.FwFirewalld, action)
	}

	key, value, found := strings.Cut(rule, "=")
	if !found || value == "" {
		return ResolvedCommand{}, errInvalidInputf("firewalld rule must have the form key=value, got %q", rule)
	}
	flag, ok := flags[key]
	if !ok {
		return ResolvedCommand{}, errInvalidInputf("unsupported firewalld rule type %q", key)
	}

	return ResolvedCommand{
		Argv:              []string{"firewall-cmd", "--permanent", flag, value},
		RequiresPrivilege: true,
	}, nil
}

func buildUFWCommand(action, rule string) (ResolvedCommand, error) {
	switch action {
	case "list":
		return ResolvedCommand{
			Argv:              []string{"ufw", "status", "verbose"},
			RequiresPrivilege: true,
		}, nil

	case "add", "del":
		tokens := strings.Fields(rule)
		if len(tokens) == 0 {
			return ResolvedCommand{}, errInvalidInputf("firewall action %q requires a rule", action)
		}
		argv := []string{"ufw"}
		if action == "del" {
			argv = append(argv, "delete")
		}
		argv = append(argv, tokens...)
		return ResolvedCommand{Argv: argv, RequiresPrivilege: true}, nil

	default:
		return ResolvedCommand{}, errUnsupportedf("firewall backend %q does not support action %q", platform.FwUFW, action)
	}
}

func buildIptablesCommand(action, rule string, options map[string]string) (ResolvedCommand, error) {
	table := options["table"]
	if table == "" {
		table = "filter"
	}
	chain := options["chain"]
	if chain == "" {
		chain = "INPUT"
	}

	switch action {
	case "list":
		return ResolvedCommand{
			Argv:              []string{"iptables", "-t", table, "-L", chain, "-n", "-v"},
			RequiresPrivilege: true,
		}, nil

	case "add", "del":
		tokens := strings.Fields(rule)
		if len(tokens) == 0 {
			return ResolvedCommand{}, errInvalidInputf("firewall action %q requires a rule", action)
		}
		mode := "-A"
		if action == "del" {
			mode = "-D"
		}
		argv := append([]string{"iptables", "-t", table, mode, chain}, tokens...)
		return ResolvedCommand{Argv: argv, RequiresPrivilege: true}, nil

	default:
		return ResolvedCommand{}, errUnsupportedf("firewall backend %q does not support action %q", platform.FwIptables, action)
	}
}
