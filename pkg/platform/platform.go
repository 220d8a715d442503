// Package platform probes the host for its distribution identity and for the
// package, service, and firewall management tools available on PATH.
//
// Probing is cheap but not free, so the result is computed once per process
// and cached. Probes never fail: a host where nothing can be detected yields
// the "unknown" sentinel values, and it is the adapter's job to reject those
// lazily when a command is actually requested for them.
package platform

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Unknown is the sentinel value for any field that could not be detected.
const Unknown = "unknown"

// PackageManager identifies the package management tool family.
type PackageManager string

const (
	PkgDNF     PackageManager = "dnf"
	PkgYum     PackageManager = "yum"
	PkgApt     PackageManager = "apt"
	PkgAptGet  PackageManager = "apt-get"
	PkgZypper  PackageManager = "zypper"
	PkgPacman  PackageManager = "pacman"
	PkgUnknown PackageManager = Unknown
)

// ServiceManager identifies the init/service management family.
type ServiceManager string

const (
	SvcSystemd ServiceManager = "systemd"
	SvcSysV    ServiceManager = "sysv"
	SvcUnknown ServiceManager = Unknown
)

// FirewallManager identifies the firewall frontend.
type FirewallManager string

const (
	FwFirewalld FirewallManager = "firewalld"
	FwUFW       FirewallManager = "ufw"
	FwIptables  FirewallManager = "iptables"
)

// Environment describes the host as seen by the command translation layer.
// It is immutable after detection.
type Environment struct {
	DistroID        string          `json:"distro_id"`
	DistroVersion   string          `json:"distro_version"`
	PackageManager  PackageManager  `json:"package_manager"`
	ServiceManager  ServiceManager  `json:"service_manager"`
	FirewallManager FirewallManager `json:"firewall_manager"`
}

var (
	detectOnce sync.Once
	detected   Environment
)

// Detect probes the host once per process and returns the cached Environment.
func Detect() Environment {
	detectOnce.Do(func() {
		detected = Probe(Options{})
	})
	return detected
}

// Options controls where Probe looks. The zero value probes the live host.
type Options struct {
	// Root is prepended to the release file paths ("/" when empty).
	Root string

	// LookPath reports where a binary lives on PATH. exec.LookPath when nil.
	LookPath func(file string) (string, error)
}

func (o *Options) defaults() {
	if o.Root == "" {
		o.Root = "/"
	}
	if o.LookPath == nil {
		o.LookPath = exec.LookPath
	}
}

// Probe performs a full detection pass with the given options. Callers
// normally want Detect; Probe exists so tests can point detection at a fake
// filesystem and PATH.
func Probe(opts Options) Environment {
	opts.defaults()
	return Environment{
		DistroID:        detectDistroID(opts),
		DistroVersion:   detectDistroVersion(opts),
		PackageManager:  detectPackageManager(opts),
		ServiceManager:  detectServiceManager(opts),
		FirewallManager: detectFirewallManager(opts),
	}
}

// commandExists probes for a binary on PATH. A lookup failure only ever
// means "not found", never a hard error.
func commandExists(opts Options, name string) bool {
	_, err := opts.LookPath(name)
	return err == nil
}

// releaseField extracts the value of a KEY= line from an os-release style
// file. Returns "" when the file or the key is absent.
func releaseField(opts Options, file, key string) string {
	data, err := os.ReadFile(filepath.Join(opts.Root, file))
	if err != nil {
		return ""
	}
	prefix := key + "="
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, prefix)), `"`)
		}
	}
	return ""
}

func detectDistroID(opts Options) string {
	if id := releaseField(opts, "etc/os-release", "ID"); id != "" {
		return id
	}

	// Older RHEL-family hosts ship /etc/redhat-release only.
	if data, err := os.ReadFile(filepath.Join(opts.Root, "etc/redhat-release")); err == nil {
		content := strings.ToLower(string(data))
		switch {
		case strings.Contains(content, "centos"):
			return "centos"
		case strings.Contains(content, "rhel"), strings.Contains(content, "red hat"):
			return "rhel"
		case strings.Contains(content, "fedora"):
			return "fedora"
		}
	}

	if id := releaseField(opts, "etc/lsb-release", "DISTRIB_ID"); id != "" {
		return strings.ToLower(id)
	}

	return Unknown
}

var versionRe = regexp.MustCompile(`(\d+\.?\d*)`)

func detectDistroVersion(opts Options) string {
	if v := releaseField(opts, "etc/os-release", "VERSION_ID"); v != "" {
		return v
	}

	if data, err := os.ReadFile(filepath.Join(opts.Root, "etc/redhat-release")); err == nil {
		if m := versionRe.FindString(string(data)); m != "" {
			return m
		}
	}

	return Unknown
}

// packageManagerPriority is the fixed probe order; first found wins.
var packageManagerPriority = []PackageManager{
	PkgDNF, PkgYum, PkgApt, PkgAptGet, PkgZypper, PkgPacman,
}

func detectPackageManager(opts Options) PackageManager {
	for _, mgr := range packageManagerPriority {
		if commandExists(opts, string(mgr)) {
			return mgr
		}
	}
	return PkgUnknown
}

func detectServiceManager(opts Options) ServiceManager {
	switch {
	case commandExists(opts, "systemctl"):
		return SvcSystemd
	case commandExists(opts, "service"):
		return SvcSysV
	default:
		return SvcUnknown
	}
}

func detectFirewallManager(opts Options) FirewallManager {
	switch {
	case commandExists(opts, "firewall-cmd"):
		return FwFirewalld
	case commandExists(opts, "ufw"):
		return FwUFW
	default:
		// iptables is the fallback backend even when the binary was not
		// probed; building a command for it will surface any real absence.
		return FwIptables
	}
}
