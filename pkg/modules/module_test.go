package modules

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/unicmd/unicmd/pkg/adapter"
	"github.com/unicmd/unicmd/pkg/envelope"
	"github.com/unicmd/unicmd/pkg/platform"
	"github.com/unicmd/unicmd/pkg/runner"
)

// fakeExec records every command and replays queued results, defaulting to a
// clean exit once the queue is drained.
type fakeExec struct {
	calls   [][]string
	results []runner.Result
}

func (f *fakeExec) Run(_ context.Context, cmd adapter.ResolvedCommand) runner.Result {
	f.calls = append(f.calls, cmd.Privileged())
	if len(f.results) == 0 {
		return runner.Result{}
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res
}

func newTestDeps(t *testing.T, exec runner.Executor) (Deps, *bytes.Buffer) {
	t.Helper()
	t.Setenv("UNICMD_CONFIG_DIR", t.TempDir())
	var out bytes.Buffer
	deps := Deps{
		Env: platform.Environment{
			DistroID:        "fedora",
			PackageManager:  platform.PkgDNF,
			ServiceManager:  platform.SvcSystemd,
			FirewallManager: platform.FwFirewalld,
		},
		Exec:    exec,
		Emitter: envelope.NewWithWriters(&out, io.Discard),
	}
	return deps, &out
}

type envelopeDoc struct {
	Module string         `toml:"module"`
	Status string         `toml:"status"`
	Data   map[string]any `toml:"data"`
	Error  struct {
		Message string `toml:"message"`
		Code    int    `toml:"code"`
	} `toml:"error"`
}

func decodeEnvelope(t *testing.T, out *bytes.Buffer) envelopeDoc {
	t.Helper()
	var doc envelopeDoc
	if _, err := toml.Decode(out.String(), &doc); err != nil {
		t.Fatalf("envelope does not parse: %v\n%s", err, out.String())
	}
	return doc
}

func TestPackageInstall(t *testing.T) {
	exec := &fakeExec{}
	deps, out := newTestDeps(t, exec)

	code := NewPackage(deps).Execute(context.Background(), "install", "vim", nil)
	if code != 0 {
		t.Fatalf("Execute() = %d, want 0", code)
	}
	want := [][]string{{"sudo", "dnf", "install", "-y", "vim"}}
	if !reflect.DeepEqual(exec.calls, want) {
		t.Errorf("calls = %v, want %v", exec.calls, want)
	}
	if doc := decodeEnvelope(t, out); doc.Module != "package" || doc.Status != "success" {
		t.Errorf("envelope = %q/%q", doc.Module, doc.Status)
	}
}

func TestPackageUpdateUpgradeFromConfig(t *testing.T) {
	exec := &fakeExec{}
	deps, _ := newTestDeps(t, exec)
	deps.Env.PackageManager = platform.PkgApt

	dir := os.Getenv("UNICMD_CONFIG_DIR")
	config := "[default.update]\nupgrade = true\n"
	if err := os.WriteFile(filepath.Join(dir, "package.toml"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	NewPackage(deps).Execute(context.Background(), "update", "", nil)

	want := [][]string{{"sudo", "apt", "upgrade", "-y"}}
	if !reflect.DeepEqual(exec.calls, want) {
		t.Errorf("calls = %v, want %v", exec.calls, want)
	}
}

func TestPackageUnknownAction(t *testing.T) {
	exec := &fakeExec{}
	deps, out := newTestDeps(t, exec)

	code := NewPackage(deps).Execute(context.Background(), "frobnicate", "vim", nil)
	if code != 1 {
		t.Errorf("Execute() = %d, want 1", code)
	}
	if len(exec.calls) != 0 {
		t.Errorf("no command should run, got %v", exec.calls)
	}
	if doc := decodeEnvelope(t, out); doc.Status != "error" {
		t.Errorf("status = %q, want error", doc.Status)
	}
}

func TestPackageFailureEnvelope(t *testing.T) {
	exec := &fakeExec{results: []runner.Result{
		{ExitCode: 1, Stderr: "No match for argument: no-such-pkg"},
	}}
	deps, out := newTestDeps(t, exec)

	code := NewPackage(deps).Execute(context.Background(), "install", "no-such-pkg", nil)
	if code != 1 {
		t.Errorf("Execute() = %d, want 1", code)
	}
	doc := decodeEnvelope(t, out)
	if doc.Status != "error" || doc.Error.Code != 1 {
		t.Errorf("status/code = %q/%d", doc.Status, doc.Error.Code)
	}
}

func TestServiceEnableNow(t *testing.T) {
	exec := &fakeExec{}
	deps, out := newTestDeps(t, exec)

	code := NewService(deps).Execute(context.Background(), "enable", "nginx", map[string]string{"now": ""})
	if code != 0 {
		t.Fatalf("Execute() = %d, want 0", code)
	}
	want := [][]string{
		{"sudo", "systemctl", "enable", "nginx"},
		{"sudo", "systemctl", "start", "nginx"},
	}
	if !reflect.DeepEqual(exec.calls, want) {
		t.Errorf("calls = %v, want %v", exec.calls, want)
	}
	if doc := decodeEnvelope(t, out); doc.Status != "success" {
		t.Errorf("status = %q", doc.Status)
	}
}

func TestServiceEnableNowFollowFailure(t *testing.T) {
	exec := &fakeExec{results: []runner.Result{
		{},
		{ExitCode: 5, Stderr: "Failed to start nginx.service"},
	}}
	deps, out := newTestDeps(t, exec)

	code := NewService(deps).Execute(context.Background(), "enable", "nginx", map[string]string{"now": "true"})
	if code != 5 {
		t.Errorf("Execute() = %d, want 5", code)
	}
	if doc := decodeEnvelope(t, out); doc.Status != "error" || doc.Error.Code != 5 {
		t.Errorf("status/code = %q/%d", doc.Status, doc.Error.Code)
	}
}

func TestServiceEnableWithoutNow(t *testing.T) {
	exec := &fakeExec{}
	deps, _ := newTestDeps(t, exec)

	NewService(deps).Execute(context.Background(), "enable", "nginx", nil)

	want := [][]string{{"sudo", "systemctl", "enable", "nginx"}}
	if !reflect.DeepEqual(exec.calls, want) {
		t.Errorf("calls = %v, want %v", exec.calls, want)
	}
}

func TestFirewallIptablesSelectors(t *testing.T) {
	exec := &fakeExec{}
	deps, _ := newTestDeps(t, exec)
	deps.Env.FirewallManager = platform.FwIptables

	NewFirewall(deps).Execute(context.Background(), "add",
		"-p tcp --dport 8080 -j ACCEPT",
		map[string]string{"table": "nat", "chain": "PREROUTING"})

	want := [][]string{{
		"sudo", "iptables", "-t", "nat", "-A", "PREROUTING",
		"-p", "tcp", "--dport", "8080", "-j", "ACCEPT",
	}}
	if !reflect.DeepEqual(exec.calls, want) {
		t.Errorf("calls = %v, want %v", exec.calls, want)
	}
}

func TestFirewallBuildErrorIsReported(t *testing.T) {
	exec := &fakeExec{}
	deps, out := newTestDeps(t, exec)

	code := NewFirewall(deps).Execute(context.Background(), "add", "not-a-rule", nil)
	if code != 1 {
		t.Errorf("Execute() = %d, want 1", code)
	}
	if len(exec.calls) != 0 {
		t.Errorf("no command should run, got %v", exec.calls)
	}
	if doc := decodeEnvelope(t, out); doc.Status != "error" {
		t.Errorf("status = %q, want error", doc.Status)
	}
}

func TestGroupAddWithMembers(t *testing.T) {
	exec := &fakeExec{}
	deps, out := newTestDeps(t, exec)

	code := NewGroup(deps).Execute(context.Background(), "add", "devs",
		map[string]string{"user": "alice, bob", "gid": "2001"})
	if code != 0 {
		t.Fatalf("Execute() = %d, want 0", code)
	}
	want := [][]string{
		{"sudo", "groupadd", "-g", "2001", "devs"},
		{"sudo", "usermod", "-aG", "devs", "alice"},
		{"sudo", "usermod", "-aG", "devs", "bob"},
	}
	if !reflect.DeepEqual(exec.calls, want) {
		t.Errorf("calls = %v, want %v", exec.calls, want)
	}
	doc := decodeEnvelope(t, out)
	if doc.Data["group"] != "devs" {
		t.Errorf("data = %v", doc.Data)
	}
}

func TestGroupAddChroot(t *testing.T) {
	exec := &fakeExec{}
	deps, _ := newTestDeps(t, exec)

	NewGroup(deps).Execute(context.Background(), "add", "devs",
		map[string]string{"chroot": "/srv/jail"})

	want := [][]string{
		{"sudo", "groupadd", "devs"},
		{"sudo", "chroot", "/srv/jail", "groupadd", "devs"},
	}
	if !reflect.DeepEqual(exec.calls, want) {
		t.Errorf("calls = %v, want %v", exec.calls, want)
	}
}

func TestGroupInfo(t *testing.T) {
	exec := &fakeExec{results: []runner.Result{
		{Stdout: "wheel:x:10:alice,bob\n"},
	}}
	deps, out := newTestDeps(t, exec)

	code := NewGroup(deps).Execute(context.Background(), "info", "wheel", nil)
	if code != 0 {
		t.Fatalf("Execute() = %d, want 0", code)
	}
	doc := decodeEnvelope(t, out)
	if doc.Data["name"] != "wheel" || doc.Data["gid"] != "10" {
		t.Errorf("data = %v", doc.Data)
	}
	members, _ := doc.Data["members"].([]any)
	if len(members) != 2 || members[0] != "alice" {
		t.Errorf("members = %v", doc.Data["members"])
	}
}

func TestGroupList(t *testing.T) {
	exec := &fakeExec{results: []runner.Result{
		{Stdout: "wheel:x:10:\nadm:x:4:\ndevs:x:2001:alice\n"},
	}}
	deps, out := newTestDeps(t, exec)

	NewGroup(deps).Execute(context.Background(), "list", "", nil)

	want := [][]string{{"getent", "group"}}
	if !reflect.DeepEqual(exec.calls, want) {
		t.Errorf("calls = %v, want %v", exec.calls, want)
	}
	doc := decodeEnvelope(t, out)
	items, _ := doc.Data["items"].([]any)
	if !reflect.DeepEqual(items, []any{"adm", "devs", "wheel"}) {
		t.Errorf("items = %v", items)
	}
}

func TestGroupModRequiresChange(t *testing.T) {
	exec := &fakeExec{}
	deps, out := newTestDeps(t, exec)

	code := NewGroup(deps).Execute(context.Background(), "mod", "devs", nil)
	if code != 1 {
		t.Errorf("Execute() = %d, want 1", code)
	}
	if doc := decodeEnvelope(t, out); doc.Status != "error" {
		t.Errorf("status = %q, want error", doc.Status)
	}
}

func TestFileCommands(t *testing.T) {
	tests := []struct {
		name   string
		action string
		target string
		params map[string]string
		want   []string
	}{
		{
			name:   "copy defaults",
			action: "copy",
			target: "/src/data",
			params: map[string]string{"dest": "/dst"},
			want: []string{
				"cp", "--no-dereference",
				"--preserve=mode,ownership,timestamps,xattr,context",
				"--recursive", "--verbose", "/src/data", "/dst",
			},
		},
		{
			name:   "copy plain",
			action: "copy",
			target: "a.txt",
			params: map[string]string{"dest": "b.txt", "archive": "false", "recursive": "false", "verbose": "false"},
			want:   []string{"cp", "a.txt", "b.txt"},
		},
		{
			name:   "move forced",
			action: "move",
			target: "old",
			params: map[string]string{"dest": "new", "force": ""},
			want:   []string{"mv", "-f", "old", "new"},
		},
		{
			name:   "del recursive force",
			action: "del",
			target: "/tmp/scratch",
			params: map[string]string{"recursive": "true", "force": "true"},
			want:   []string{"rm", "-r", "-f", "/tmp/scratch"},
		},
		{
			name:   "mkdir with parents and mode",
			action: "mkdir",
			target: "/srv/app/logs",
			params: map[string]string{"parents": "", "mode": "700"},
			want:   []string{"mkdir", "-p", "-m", "700", "/srv/app/logs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExec{}
			deps, _ := newTestDeps(t, exec)

			if code := NewFile(deps).Execute(context.Background(), tt.action, tt.target, tt.params); code != 0 {
				t.Fatalf("Execute() = %d, want 0", code)
			}
			if len(exec.calls) != 1 || !reflect.DeepEqual(exec.calls[0], tt.want) {
				t.Errorf("calls = %v, want %v", exec.calls, tt.want)
			}
		})
	}
}

func TestFileCopyMissingDest(t *testing.T) {
	exec := &fakeExec{}
	deps, out := newTestDeps(t, exec)

	code := NewFile(deps).Execute(context.Background(), "copy", "/src", nil)
	if code != 1 {
		t.Errorf("Execute() = %d, want 1", code)
	}
	if doc := decodeEnvelope(t, out); doc.Status != "error" {
		t.Errorf("status = %q, want error", doc.Status)
	}
}

func TestRawFormatPassthrough(t *testing.T) {
	exec := &fakeExec{results: []runner.Result{{Stdout: "vim\nnano\n"}}}
	deps, out := newTestDeps(t, exec)
	deps.Format = envelope.FormatRaw

	code := NewPackage(deps).Execute(context.Background(), "list", "", nil)
	if code != 0 {
		t.Fatalf("Execute() = %d, want 0", code)
	}
	if out.String() != "vim\nnano\n" {
		t.Errorf("stdout = %q, want raw passthrough", out.String())
	}
}

func TestRegistry(t *testing.T) {
	deps, _ := newTestDeps(t, &fakeExec{})
	r := NewRegistry(deps)

	want := []string{"file", "firewall", "group", "package", "service"}
	if !reflect.DeepEqual(r.Names(), want) {
		t.Errorf("Names() = %v, want %v", r.Names(), want)
	}
	if _, ok := r.Get("package"); !ok {
		t.Error("package module missing from registry")
	}
	if _, ok := r.Get("bogus"); ok {
		t.Error("unexpected module for bogus name")
	}
}
