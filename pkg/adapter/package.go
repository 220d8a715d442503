package adapter

import "github.com/unicmd/unicmd/pkg/platform"

// pkgBuilder produces the argv for one (manager, action) row.
type pkgBuilder func(target string, options map[string]string) ResolvedCommand

// privilegedRow builds an elevated command from a fixed prefix, appending the
// target only when non-empty.
func privilegedRow(prefix ...string) pkgBuilder {
	return func(target string, _ map[string]string) ResolvedCommand {
		argv := append([]string{}, prefix...)
		if target != "" {
			argv = append(argv, target)
		}
		return ResolvedCommand{Argv: argv, RequiresPrivilege: true}
	}
}

// plainRow builds an unprivileged command from a fixed prefix, appending the
// target only when non-empty.
func plainRow(prefix ...string) pkgBuilder {
	return func(target string, _ map[string]string) ResolvedCommand {
		argv := append([]string{}, prefix...)
		if target != "" {
			argv = append(argv, target)
		}
		return ResolvedCommand{Argv: argv}
	}
}

// refreshOrUpgradeRow covers managers that separate "refresh metadata" from
// "upgrade everything": the upgrade option selects the second form. Neither
// form takes a target.
func refreshOrUpgradeRow(refresh, upgrade []string) pkgBuilder {
	return func(_ string, options map[string]string) ResolvedCommand {
		if flagRequested(options, "upgrade") {
			return ResolvedCommand{Argv: append([]string{}, upgrade...), RequiresPrivilege: true}
		}
		return ResolvedCommand{Argv: append([]string{}, refresh...), RequiresPrivilege: true}
	}
}

// rpmFamilyTable covers dnf and yum, which share their verb set.
func rpmFamilyTable(tool string) map[string]pkgBuilder {
	return map[string]pkgBuilder{
		"install": privilegedRow(tool, "install", "-y"),
		"remove":  privilegedRow(tool, "remove", "-y"),
		"update":  privilegedRow(tool, "update", "-y"),
		"search":  plainRow(tool, "search"),
		"info":    plainRow(tool, "info"),
		"list":    plainRow(tool, "list", "installed"),
	}
}

// packageTables is the closed dispatch table for every supported package
// manager. Install/remove/update always elevate; search/info/list never do.
var packageTables = map[platform.PackageManager]map[string]pkgBuilder{
	platform.PkgDNF: rpmFamilyTable("dnf"),
	platform.PkgYum: rpmFamilyTable("yum"),
	platform.PkgApt: {
		"install": privilegedRow("apt", "install", "-y"),
		"remove":  privilegedRow("apt", "remove", "-y"),
		"update":  refreshOrUpgradeRow([]string{"apt", "update"}, []string{"apt", "upgrade", "-y"}),
		"search":  plainRow("apt", "search"),
		"info":    plainRow("apt", "show"),
		"list":    plainRow("apt", "list", "--installed"),
	},
	platform.PkgAptGet: {
		"install": privilegedRow("apt-get", "install", "-y"),
		"remove":  privilegedRow("apt-get", "remove", "-y"),
		"update":  refreshOrUpgradeRow([]string{"apt-get", "update"}, []string{"apt-get", "upgrade", "-y"}),
		"search":  plainRow("apt-cache", "search"),
		"info":    plainRow("apt-cache", "show"),
		// dpkg -l takes a name pattern directly, so no shell pipeline is
		// needed to narrow the listing to one package.
		"list": plainRow("dpkg", "-l"),
	},
	platform.PkgZypper: {
		"install": privilegedRow("zypper", "install", "-y"),
		"remove":  privilegedRow("zypper", "remove", "-y"),
		"update":  refreshOrUpgradeRow([]string{"zypper", "refresh"}, []string{"zypper", "update", "-y"}),
		"search":  plainRow("zypper", "search"),
		"info":    plainRow("zypper", "info"),
		"list":    plainRow("zypper", "search", "-i"),
	},
	platform.PkgPacman: {
		"install": privilegedRow("pacman", "-S", "--noconfirm"),
		"remove":  privilegedRow("pacman", "-R", "--noconfirm"),
		// pacman only does full system upgrades; the target is ignored.
		"update": func(_ string, _ map[string]string) ResolvedCommand {
			return ResolvedCommand{
				Argv:              []string{"pacman", "-Syu", "--noconfirm"},
				RequiresPrivilege: true,
			}
		},
		"search": plainRow("pacman", "-Ss"),
		"info":   plainRow("pacman", "-Si"),
		"list":   plainRow("pacman", "-Q"),
	},
}

func (a *Adapter) buildPackage(action, target string, options map[string]string) (ResolvedCommand, error) {
	mgr := a.env.PackageManager
	table, ok := packageTables[mgr]
	if !ok {
		return ResolvedCommand{}, errUndetectedf("no supported package manager detected on this host")
	}
	row, ok := table[action]
	if !ok {
		return ResolvedCommand{}, errUnsupportedf("package manager %q does not support action %q", mgr, action)
	}
	return row(target, options), nil
}
