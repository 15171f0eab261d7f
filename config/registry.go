package config

import "fmt"

// ModuleConfig stores raw settings for one startup module. Each module is
// responsible for decoding the map into its own configuration struct.
type ModuleConfig struct {
	Path string         `json:"path"`
	Conf map[string]any `json:"conf"`
}

// RegistryConfig controls how the namespace is populated at startup.
type RegistryConfig struct {
	// ImportOnStart lists startup module paths, run in order. Entries may
	// be glob patterns over dotted paths.
	ImportOnStart []string `json:"import_on_start"`
	// Strict rejects a second registration at the same path.
	Strict bool `json:"strict"`
	// Modules holds settings for modules that take any. It is a list rather
	// than a map because module paths contain the key delimiter.
	Modules []ModuleConfig `json:"modules"`
}

// ModuleConf indexes the module settings by path.
func (c RegistryConfig) ModuleConf() map[string]map[string]any {
	out := make(map[string]map[string]any, len(c.Modules))
	for _, m := range c.Modules {
		out[m.Path] = m.Conf
	}
	return out
}

// Validate rejects blank module entries and duplicate module settings.
func (c RegistryConfig) Validate() error {
	for i, m := range c.ImportOnStart {
		if m == "" {
			return fmt.Errorf("import_on_start[%d] is empty", i)
		}
	}
	seen := make(map[string]struct{}, len(c.Modules))
	for i, m := range c.Modules {
		if m.Path == "" {
			return fmt.Errorf("modules[%d]: path is required", i)
		}
		if _, ok := seen[m.Path]; ok {
			return fmt.Errorf("modules[%d]: duplicate path %s", i, m.Path)
		}
		seen[m.Path] = struct{}{}
	}
	return nil
}
