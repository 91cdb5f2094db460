package loader

import (
	"errors"
	"fmt"
	"path/filepath"
)

// IncludeKey names the directive listing files merged beneath a config file.
const IncludeKey = "@include"

// ErrIncludeDepthExceeded indicates too many nested include directives.
var ErrIncludeDepthExceeded = errors.New("include depth exceeded")

// LoadWithIncludes loads path and processes its @include directive.
// Included files are lower priority than the including file and may use
// a different format. maxDepth limits nesting.
func LoadWithIncludes(fsys FileSystem, path string, maxDepth int) (map[string]any, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncludeDepthExceeded, path)
	}

	l, err := ForPath(fsys, path)
	if err != nil {
		return nil, err
	}
	config, err := l.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, nil
	}

	includes, hasIncludes := config[IncludeKey]
	if !hasIncludes {
		return config, nil
	}
	delete(config, IncludeKey)

	var includeList []string
	switch v := includes.(type) {
	case string:
		includeList = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be string or array of strings", IncludeKey)
			}
			includeList = append(includeList, s)
		}
	default:
		return nil, fmt.Errorf("%s must be string or array of strings, got %T", IncludeKey, includes)
	}

	baseDir := filepath.Dir(path)
	merged := make(map[string]any)
	for _, inc := range includeList {
		incPath := inc
		if !filepath.IsAbs(inc) {
			incPath = filepath.Join(baseDir, inc)
		}

		incConfig, err := LoadWithIncludes(fsys, incPath, maxDepth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", incPath, err)
		}
		merged = DeepMerge(merged, incConfig)
	}

	return DeepMerge(merged, config), nil
}
