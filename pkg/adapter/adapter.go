// Package adapter maps abstract, distro-agnostic operations onto concrete
// argument vectors for the tools detected on the host.
//
// Each (tool family, action) pair is a row in a closed dispatch table: a pure
// function from target and options to an argv plus a privilege requirement.
// The adapter performs no execution and no probing of its own; it is a pure
// function of the Environment it was constructed with.
package adapter

import (
	"strings"

	"github.com/unicmd/unicmd/pkg/platform"
)

// Domain selects which tool family an abstract operation addresses.
type Domain string

const (
	DomainPackage  Domain = "package"
	DomainService  Domain = "service"
	DomainFirewall Domain = "firewall"
)

// ResolvedCommand is a concrete process invocation produced from an abstract
// operation. Argv never carries the privilege prefix; Privileged applies it.
type ResolvedCommand struct {
	Argv              []string
	RequiresPrivilege bool
}

// Privileged returns the argv to hand to the executor: the sudo prefix is
// present iff the command requires elevated privileges.
func (c ResolvedCommand) Privileged() []string {
	if !c.RequiresPrivilege {
		return c.Argv
	}
	return append([]string{"sudo"}, c.Argv...)
}

// Adapter builds commands for one probed Environment.
type Adapter struct {
	env platform.Environment
}

// New returns an Adapter bound to the given Environment.
func New(env platform.Environment) *Adapter {
	return &Adapter{env: env}
}

// Build resolves an abstract {domain, action, target, options} tuple into a
// concrete command. Unsupported combinations and malformed inputs return a
// *BuildError; detection gaps surface here, not at probe time.
func (a *Adapter) Build(domain Domain, action, target string, options map[string]string) (ResolvedCommand, error) {
	switch domain {
	case DomainPackage:
		return a.buildPackage(action, target, options)
	case DomainService:
		return a.buildService(action, target, options)
	case DomainFirewall:
		return a.buildFirewall(action, target, options)
	default:
		return ResolvedCommand{}, errUnsupportedf("unknown domain %q", domain)
	}
}

// flagRequested interprets an option as a boolean flag: present with an empty
// value means true (flag-only syntax), otherwise the value must be a truthy
// token.
func flagRequested(options map[string]string, key string) bool {
	v, ok := options[key]
	if !ok {
		return false
	}
	if v == "" {
		return true
	}
	switch strings.ToLower(v) {
	case "true", "yes", "1", "on":
		return true
	}
	return false
}
