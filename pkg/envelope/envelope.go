// Package envelope renders the canonical success/error output document that
// every top-level operation produces.
//
// The document format is TOML: line-oriented, readable by humans and trivially
// parsed by the scripts that wrap this tool. An envelope is created once per
// invocation and serialized exactly once, to standard output or to a single
// destination file.
package envelope

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Format selects how results reach the caller.
type Format string

const (
	// FormatTOML wraps results in the structured envelope.
	FormatTOML Format = "toml"
	// FormatRaw bypasses structuring and passes command output through.
	FormatRaw Format = "raw"
)

type successDoc struct {
	Module string         `toml:"module"`
	Status string         `toml:"status"`
	RunID  string         `toml:"run_id"`
	Data   map[string]any `toml:"data"`
}

type errorBody struct {
	Message string `toml:"message"`
	Code    int    `toml:"code"`
}

type errorDoc struct {
	Module string    `toml:"module"`
	Status string    `toml:"status"`
	RunID  string    `toml:"run_id"`
	Error  errorBody `toml:"error"`
}

// Emitter writes envelopes for one invocation.
type Emitter struct {
	out        io.Writer
	errOut     io.Writer
	outputFile string
	runID      string
	now        func() time.Time
}

// New returns an Emitter writing to standard output, tagged with a fresh
// run ID.
func New() *Emitter {
	return NewWithWriters(os.Stdout, os.Stderr)
}

// NewWithWriters returns an Emitter targeting the given writers.
func NewWithWriters(out, errOut io.Writer) *Emitter {
	return &Emitter{
		out:    out,
		errOut: errOut,
		runID:  uuid.NewString(),
		now:    time.Now,
	}
}

// RunID returns the identifier stamped into every envelope this Emitter
// produces.
func (e *Emitter) RunID() string { return e.runID }

// SetOutputFile redirects the single envelope write to path instead of
// standard output. A path naming an existing directory gets a generated
// timestamped file name inside it.
func (e *Emitter) SetOutputFile(path string) {
	e.outputFile = path
}

// Success emits a success envelope and returns 0.
func (e *Emitter) Success(module string, data map[string]any) int {
	if data == nil {
		data = map[string]any{}
	}
	doc := successDoc{Module: module, Status: "success", RunID: e.runID, Data: data}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		log.Error().Err(err).Str("module", module).Msg("Envelope serialization failed")
		fmt.Fprintf(e.errOut, "error: cannot serialize output: %v\n", err)
		return 1
	}
	e.write(buf.String())
	return 0
}

// Error emits an error envelope and returns code for use as the process exit
// status.
func (e *Emitter) Error(module, message string, code int) int {
	doc := errorDoc{
		Module: module,
		Status: "error",
		RunID:  e.runID,
		Error:  errorBody{Message: message, Code: code},
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		log.Error().Err(err).Str("module", module).Msg("Envelope serialization failed")
		fmt.Fprintf(e.errOut, "error: %s\n", message)
		return code
	}
	e.write(buf.String())
	return code
}

// Raw bypasses the envelope entirely: command output is passed through as the
// tool produced it, stderr only on failure.
func (e *Emitter) Raw(stdout, stderr string, exitCode int) int {
	if stdout != "" {
		fmt.Fprint(e.out, stdout)
		if !strings.HasSuffix(stdout, "\n") {
			fmt.Fprintln(e.out)
		}
	}
	if stderr != "" && exitCode != 0 {
		fmt.Fprint(e.errOut, stderr)
		if !strings.HasSuffix(stderr, "\n") {
			fmt.Fprintln(e.errOut)
		}
	}
	return exitCode
}

func (e *Emitter) write(content string) {
	if e.outputFile == "" {
		fmt.Fprint(e.out, content)
		return
	}

	path := e.resolveOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Cannot create output directory")
		fmt.Fprintf(e.errOut, "error: cannot write output file %s: %v\n", path, err)
		return
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Cannot write output file")
		fmt.Fprintf(e.errOut, "error: cannot write output file %s: %v\n", path, err)
		return
	}
	fmt.Fprintf(e.out, "output written to %s\n", path)
}

// resolveOutputPath turns a directory destination into a generated file name.
func (e *Emitter) resolveOutputPath() string {
	path := e.outputFile
	info, err := os.Stat(path)
	if (err == nil && info.IsDir()) || strings.HasSuffix(path, string(os.PathSeparator)) {
		name := "unicmd-" + e.now().Format("20060102150405") + ".toml"
		return filepath.Join(path, name)
	}
	return path
}
