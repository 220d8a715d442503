package adapter

import "github.com/unicmd/unicmd/pkg/platform"

// systemd verbs that translate 1:1 to systemctl and require elevation.
var systemdPrivilegedVerbs = map[string]bool{
	"start":   true,
	"stop":    true,
	"restart": true,
	"enable":  true,
	"disable": true,
	"mask":    true,
	"unmask":  true,
}

func (a *Adapter) buildService(action, target string, options map[string]string) (ResolvedCommand, error) {
	switch a.env.ServiceManager {
	case platform.SvcSystemd:
		return buildSystemdCommand(action, target, options)
	case platform.SvcSysV:
		return buildSysVCommand(action, target)
	default:
		return ResolvedCommand{}, errUndetectedf("no supported service manager detected on this host")
	}
}

func buildSystemdCommand(action, target string, options map[string]string) (ResolvedCommand, error) {
	if action == "list" {
		argv := []string{"systemctl", "list-units", "--type=service", "--all"}
		if state := options["state"]; state != "" {
			argv = append(argv, "--state", state)
		}
		return ResolvedCommand{Argv: argv}, nil
	}

	if action == "status" {
		if target == "" {
			return ResolvedCommand{}, errInvalidInputf("service action %q requires a service name", action)
		}
		return ResolvedCommand{Argv: []string{"systemctl", "status", target}}, nil
	}

	if systemdPrivilegedVerbs[action] {
		if target == "" {
			return ResolvedCommand{}, errInvalidInputf("service action %q requires a service name", action)
		}
		return ResolvedCommand{
			Argv:              []string{"systemctl", action, target},
			RequiresPrivilege: true,
		}, nil
	}

	return ResolvedCommand{}, errUnsupportedf("service manager %q does not support action %q", platform.SvcSystemd, action)
}

func buildSysVCommand(action, target string) (ResolvedCommand, error) {
	switch action {
	case "list":
		return ResolvedCommand{Argv: []string{"service", "--status-all"}}, nil

	case "start", "stop", "restart", "status":
		if target == "" {
			return ResolvedCommand{}, errInvalidInputf("service action %q requires a service name", action)
		}
		cmd := ResolvedCommand{Argv: []string{"service", target, action}}
		cmd.RequiresPrivilege = action != "status"
		return cmd, nil

	case "enable", "disable":
		// The sysv family has no native enable/disable verb; boot-time
		// enablement goes through chkconfig instead.
		if target == "" {
			return ResolvedCommand{}, errInvalidInputf("service action %q requires a service name", action)
		}
		state := "on"
		if action == "disable" {
			state = "off"
		}
		return ResolvedCommand{
			Argv:              []string{"chkconfig", target, state},
			RequiresPrivilege: true,
		}, nil

	default:
		return ResolvedCommand{}, errUnsupportedf("service manager %q does not support action %q", platform.SvcSysV, action)
	}
}
