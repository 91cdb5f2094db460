package loader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix of keychord environment variables.
const DefaultEnvPrefix = "KEYCHORD_"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "KEYCHORD_")
	mapping map[string]string // Env var -> config path; "" skips the variable
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "KEYCHORD_").
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, defaultEnvMapping(prefix))
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
		environ: os.Environ,
	}
}

// defaultEnvMapping returns the variables that do not follow the
// SECTION_SETTING naming rule.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "ADDR":   "server.addr",
		prefix + "SCRIPT": "script.path",
		// Read by the CLI to locate the config file itself.
		prefix + "CONFIG": "",
	}
}

// Load reads environment variables and returns a configuration map.
// Empty values are treated as set, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range l.environ() {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}
		name, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(config, path, l.parseValue(value))
	}

	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// RemoveMapping removes an environment variable mapping.
func (l *EnvLoader) RemoveMapping(envVar string) {
	delete(l.mapping, envVar)
}

// envToPath converts KEYCHORD_HOTKEYS_INDICATOR_DURATION to
// hotkeys.indicator_duration: the first part names the section and the
// rest the setting.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	if name == "" {
		return ""
	}
	section, setting, ok := strings.Cut(name, "_")
	if !ok || setting == "" {
		return section
	}
	return section + "." + setting
}

// parseValue converts a variable's text into the closest config value.
// Durations stay strings; the typed config parses them.
func (l *EnvLoader) parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}

	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		list := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				list = append(list, p)
			}
		}
		return list
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if next, ok := current[part].(map[string]any); ok {
			current = next
		} else {
			next := make(map[string]any)
			current[part] = next
			current = next
		}
	}

	current[parts[len(parts)-1]] = value
}

// GetByPath reads a value from a nested map using a dot-separated path.
func GetByPath(data map[string]any, path string) (any, bool) {
	current := any(data)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
