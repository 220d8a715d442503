package modules

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/unicmd/unicmd/pkg/adapter"
	"github.com/unicmd/unicmd/pkg/params"
)

// GroupModule manages local groups. The shadow-utils tools are uniform across
// distributions, so no adapter dispatch is involved: argv shapes are built
// directly.
type GroupModule struct {
	deps     Deps
	resolver *params.Resolver
}

// NewGroup constructs the group module.
func NewGroup(deps Deps) *GroupModule {
	return &GroupModule{deps: deps, resolver: params.NewResolver("group")}
}

func (m *GroupModule) Name() string        { return "group" }
func (m *GroupModule) Description() string { return "Manage local groups" }

func (m *GroupModule) Actions() map[string]string {
	return map[string]string{
		"add":  "Create a group, optionally adding members with user:a,b",
		"del":  "Delete a group",
		"mod":  "Rename a group or change its GID",
		"list": "List local group names",
		"info": "Show one group's entry",
	}
}

func (m *GroupModule) Execute(ctx context.Context, action, target string, params map[string]string) int {
	switch action {
	case "add":
		return m.add(ctx, target, params)
	case "del":
		return m.del(ctx, target, params)
	case "mod":
		return m.mod(ctx, target, params)
	case "list":
		return m.list(ctx)
	case "info":
		return m.info(ctx, target)
	default:
		return unknownAction(m.deps, m.Name(), action)
	}
}

// groupaddArgv builds the groupadd invocation shared by the host and chroot
// variants.
func (m *GroupModule) groupaddArgv(name string, params map[string]string) []string {
	argv := []string{"groupadd"}
	if m.resolver.ResolveBool("system", "add", params, false) {
		argv = append(argv, "-r")
	}
	if gid := m.resolver.Resolve("gid", "add", params, ""); gid != "" {
		argv = append(argv, "-g", gid)
	}
	return append(argv, name)
}

func (m *GroupModule) add(ctx context.Context, name string, params map[string]string) int {
	if name == "" {
		return emitError(m.deps, m.Name(), "group name required")
	}

	cmd := adapter.ResolvedCommand{Argv: m.groupaddArgv(name, params), RequiresPrivilege: true}
	res := m.deps.Exec.Run(ctx, cmd)
	if !res.OK() {
		return emitResult(m.deps, m.Name(), res)
	}

	members := m.resolver.ResolveList("user", "add", params, ",", nil)
	for _, user := range members {
		ures := m.deps.Exec.Run(ctx, adapter.ResolvedCommand{
			Argv:              []string{"usermod", "-aG", name, user},
			RequiresPrivilege: true,
		})
		if !ures.OK() {
			log.Warn().Str("group", name).Str("user", user).
				Str("stderr", strings.TrimSpace(ures.Stderr)).
				Msg("Cannot add user to group")
		}
	}

	if chroot := m.resolver.Resolve("chroot", "add", params, ""); chroot != "" {
		argv := append([]string{"chroot", chroot}, m.groupaddArgv(name, params)...)
		cres := m.deps.Exec.Run(ctx, adapter.ResolvedCommand{Argv: argv, RequiresPrivilege: true})
		if !cres.OK() {
			log.Warn().Str("group", name).Str("chroot", chroot).
				Str("stderr", strings.TrimSpace(cres.Stderr)).
				Msg("Cannot create group inside chroot")
		}
	}

	return emitResultData(m.deps, m.Name(), res, map[string]any{
		"group":   name,
		"members": members,
	})
}

func (m *GroupModule) del(ctx context.Context, name string, params map[string]string) int {
	if name == "" {
		return emitError(m.deps, m.Name(), "group name required")
	}
	argv := []string{"groupdel"}
	if m.resolver.ResolveBool("force", "del", params, false) {
		argv = append(argv, "-f")
	}
	argv = append(argv, name)
	res := m.deps.Exec.Run(ctx, adapter.ResolvedCommand{Argv: argv, RequiresPrivilege: true})
	return emitResultData(m.deps, m.Name(), res, map[string]any{"group": name})
}

func (m *GroupModule) mod(ctx context.Context, name string, params map[string]string) int {
	if name == "" {
		return emitError(m.deps, m.Name(), "group name required")
	}
	newName := m.resolver.Resolve("name", "mod", params, "")
	gid := m.resolver.Resolve("gid", "mod", params, "")
	if newName == "" && gid == "" {
		return emitError(m.deps, m.Name(), "mod requires a name or gid parameter")
	}

	argv := []string{"groupmod"}
	if newName != "" {
		argv = append(argv, "-n", newName)
	}
	if gid != "" {
		argv = append(argv, "-g", gid)
	}
	argv = append(argv, name)

	res := m.deps.Exec.Run(ctx, adapter.ResolvedCommand{Argv: argv, RequiresPrivilege: true})
	data := map[string]any{"group": name}
	if newName != "" {
		data["renamed_to"] = newName
	}
	if gid != "" {
		data["gid"] = gid
	}
	return emitResultData(m.deps, m.Name(), res, data)
}

func (m *GroupModule) list(ctx context.Context) int {
	res := m.deps.Exec.Run(ctx, adapter.ResolvedCommand{Argv: []string{"getent", "group"}})
	if !res.OK() {
		return emitResult(m.deps, m.Name(), res)
	}

	names := []string{}
	for _, line := range strings.Split(res.Stdout, "\n") {
		if name, _, found := strings.Cut(line, ":"); found && name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return emitResultData(m.deps, m.Name(), res, map[string]any{"items": names})
}

func (m *GroupModule) info(ctx context.Context, name string) int {
	if name == "" {
		return emitError(m.deps, m.Name(), "group name required")
	}
	res := m.deps.Exec.Run(ctx, adapter.ResolvedCommand{Argv: []string{"getent", "group", name}})
	if !res.OK() {
		return emitError(m.deps, m.Name(), fmt.Sprintf("group %q not found", name))
	}

	// getent group lines have the form name:x:gid:member,member.
	fields := strings.Split(strings.TrimSpace(res.Stdout), ":")
	if len(fields) < 4 {
		return emitError(m.deps, m.Name(), fmt.Sprintf("unexpected getent output %q", strings.TrimSpace(res.Stdout)))
	}

	members := []string{}
	for _, member := range strings.Split(fields[3], ",") {
		if member != "" {
			members = append(members, member)
		}
	}
	return emitResultData(m.deps, m.Name(), res, map[string]any{
		"name":    fields[0],
		"gid":     fields[2],
		"members": members,
	})
}
