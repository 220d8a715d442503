package commands

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/unicmd/unicmd/pkg/modules"
)

// moduleOrder fixes the command listing order in help output.
var moduleOrder = []string{"package", "service", "firewall", "group", "file"}

type moduleHelp struct {
	short   string
	long    string
	example string
}

var moduleHelpText = map[string]moduleHelp{
	"package": {
		short: "Manage system packages",
		long: `Manage system packages through the package manager detected on this host.

Actions: install, remove, update, search, info, list.

update refreshes package metadata; add upgrade:true to upgrade installed
packages where the manager separates the two.`,
		example: `  # Install a package
  unicmd package install vim

  # Upgrade everything
  unicmd package update upgrade:true

  # Search without elevation
  unicmd package search nginx`,
	},
	"service": {
		short: "Control system services",
		long: `Control services through systemd or SysV init, whichever the host runs.

Actions: start, stop, restart, enable, disable, status, mask, unmask, list.

enable and disable accept now:true to also start or stop the service in the
same invocation.`,
		example: `  # Enable and start in one step
  unicmd service enable nginx now:true

  # Status never needs elevation
  unicmd service status sshd`,
	},
	"firewall": {
		short: "Manage firewall rules",
		long: `Manage firewall rules through firewalld, ufw, or iptables.

Actions: add, del, list.

Rule syntax follows the backend: firewalld takes key=value rules
(port=80/tcp, service=http), ufw takes its own rule phrases, and iptables
takes a raw flag string with optional table: and chain: parameters.`,
		example: `  # firewalld host
  unicmd firewall add port=8080/tcp

  # iptables host
  unicmd firewall add "-p tcp --dport 8080 -j ACCEPT" chain:INPUT`,
	},
	"group": {
		short: "Manage local groups",
		long: `Manage local groups with the shadow-utils tools.

Actions: add, del, mod, list, info.

add accepts gid:N, system:true, user:a,b (members to add), and chroot:DIR
to mirror the group into a chroot.`,
		example: `  # Create a group and add members
  unicmd group add devs gid:2001 user:alice,bob

  # Rename a group
  unicmd group mod devs name:developers`,
	},
	"file": {
		short: "Copy, move, delete, and create files",
		long: `Wrap the coreutils file operations with resolvable defaults.

Actions: copy, move, del, mkdir.

copy and move require dest:PATH. copy defaults to archive mode (permissions,
ownership, and timestamps preserved); disable with archive:false.`,
		example: `  # Archive copy of a tree
  unicmd file copy /srv/app dest:/backup/app

  # Create a directory with a mode
  unicmd file mkdir /srv/app/logs parents: mode:700`,
	},
}

func newModuleCommand(name string, deps func() modules.Deps) *cobra.Command {
	help := moduleHelpText[name]
	return &cobra.Command{
		Use:     name + " <action> [target] [key:value ...]",
		Short:   help.short,
		Long:    help.long,
		Example: help.example,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := args[0]
			target, params, err := parseCallArgs(args[1:])
			if err != nil {
				return err
			}

			log.Debug().
				Str("module", name).
				Str("action", action).
				Str("target", target).
				Msg("Dispatching operation")

			d := deps()
			m, ok := modules.NewRegistry(d).Get(name)
			if !ok {
				return fmt.Errorf("module %q not registered", name)
			}
			if code := m.Execute(cmd.Context(), action, target, params); code != 0 {
				return exitError{code: code}
			}
			return nil
		},
	}
}

// parseCallArgs splits trailing arguments into the single positional target
// and key:value parameters. A bare "key:" yields an empty value, which the
// resolver reads as an explicit true.
func parseCallArgs(args []string) (string, map[string]string, error) {
	var target string
	params := map[string]string{}
	for _, arg := range args {
		if key, value, found := strings.Cut(arg, ":"); found {
			if key == "" {
				return "", nil, fmt.Errorf("malformed parameter %q", arg)
			}
			params[key] = value
			continue
		}
		if target != "" {
			return "", nil, fmt.Errorf("unexpected argument %q: parameters use key:value syntax", arg)
		}
		target = arg
	}
	return target, params, nil
}
