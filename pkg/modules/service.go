package modules

import (
	"context"

	"github.com/unicmd/unicmd/pkg/adapter"
	"github.com/unicmd/unicmd/pkg/params"
)

// ServiceModule controls system services through systemd or SysV init.
type ServiceModule struct {
	deps     Deps
	adapter  *adapter.Adapter
	resolver *params.Resolver
}

// NewService constructs the service module.
func NewService(deps Deps) *ServiceModule {
	return &ServiceModule{
		deps:     deps,
		adapter:  adapter.New(deps.Env),
		resolver: params.NewResolver("service"),
	}
}

func (m *ServiceModule) Name() string        { return "service" }
func (m *ServiceModule) Description() string { return "Control system services" }

func (m *ServiceModule) Actions() map[string]string {
	return map[string]string{
		"start":   "Start a service",
		"stop":    "Stop a service",
		"restart": "Restart a service",
		"enable":  "Enable a service at boot, optionally starting it with now:true",
		"disable": "Disable a service at boot, optionally stopping it with now:true",
		"status":  "Show the status of a service",
		"mask":    "Mask a service so it cannot be started",
		"unmask":  "Remove a service mask",
		"list":    "List known services",
	}
}

// followAction maps enable/disable onto the immediate state change requested
// by the now parameter.
func followAction(action string) string {
	if action == "enable" {
		return "start"
	}
	return "stop"
}

// Execute resolves and runs one service action. enable and disable accept a
// now parameter that chains the matching start or stop after a successful
// boot-state change; the envelope reports the chain as one operation.
func (m *ServiceModule) Execute(ctx context.Context, action, target string, params map[string]string) int {
	if _, ok := m.Actions()[action]; !ok {
		return unknownAction(m.deps, m.Name(), action)
	}

	cmd, err := m.adapter.Build(adapter.DomainService, action, target, params)
	if err != nil {
		return emitError(m.deps, m.Name(), err.Error())
	}
	res := m.deps.Exec.Run(ctx, cmd)
	if !res.OK() {
		return emitResult(m.deps, m.Name(), res)
	}

	if (action == "enable" || action == "disable") && m.resolver.ResolveBool("now", action, params, false) {
		follow := followAction(action)
		followCmd, err := m.adapter.Build(adapter.DomainService, follow, target, nil)
		if err != nil {
			return emitError(m.deps, m.Name(), err.Error())
		}
		followRes := m.deps.Exec.Run(ctx, followCmd)
		if !followRes.OK() {
			return emitResult(m.deps, m.Name(), followRes)
		}
		res.Stdout += followRes.Stdout
	}

	return emitResult(m.deps, m.Name(), res)
}
