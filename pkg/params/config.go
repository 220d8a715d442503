package params

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
)

// DefaultConfigDir is where per-module configuration lives unless overridden
// by UNICMD_CONFIG_DIR.
const DefaultConfigDir = "/etc/unicmd"

// ConfigDir returns the directory holding per-module config files.
func ConfigDir() string {
	if dir := os.Getenv("UNICMD_CONFIG_DIR"); dir != "" {
		return dir
	}
	return DefaultConfigDir
}

// moduleFile is the on-disk schema: a [default] table of global scalars plus
// [default.<action>] sub-tables for action-scoped values.
type moduleFile struct {
	Default map[string]any `toml:"default"`
}

// loadModuleDefaults reads <configdir>/<module>.toml once. Absence is not an
// error; anything else is reported and degrades to empty defaults so the
// process keeps running on code defaults alone.
func loadModuleDefaults(module string) map[string]any {
	path := filepath.Join(ConfigDir(), module+".toml")

	var file moduleFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("module", module).Str("path", path).
				Msg("Ignoring unreadable module config")
		}
		return map[string]any{}
	}
	if file.Default == nil {
		return map[string]any{}
	}
	return file.Default
}
