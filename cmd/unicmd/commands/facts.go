package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unicmd/unicmd/pkg/envelope"
	"github.com/unicmd/unicmd/pkg/modules"
)

func newFactsCommand(deps func() modules.Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "facts",
		Short: "Show the detected host environment",
		Long: `Probe and display the host environment: distribution identity and the
package, service, and firewall managers every other command will use.

Detection runs once per invocation and every value is always populated;
"unknown" means no supported tool was found for that slot.`,
		Example: `  # TOML envelope with the probed environment
  unicmd facts

  # Raw key=value lines
  unicmd facts -o raw`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := deps()
			pairs := [][2]string{
				{"distro_id", d.Env.DistroID},
				{"distro_version", d.Env.DistroVersion},
				{"package_manager", string(d.Env.PackageManager)},
				{"service_manager", string(d.Env.ServiceManager)},
				{"firewall_manager", string(d.Env.FirewallManager)},
			}

			if d.Format == envelope.FormatRaw {
				var sb strings.Builder
				for _, p := range pairs {
					fmt.Fprintf(&sb, "%s=%s\n", p[0], p[1])
				}
				d.Emitter.Raw(sb.String(), "", 0)
				return nil
			}

			data := map[string]any{}
			for _, p := range pairs {
				data[p[0]] = p[1]
			}
			if code := d.Emitter.Success("facts", data); code != 0 {
				return exitError{code: code}
			}
			return nil
		},
	}
}
