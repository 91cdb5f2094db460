package keymap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for keymap files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported keymap format")

// Format identifies a keymap file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Loader loads keymaps from configuration files.
type Loader struct {
	// searchPaths are directories to search for keymap files.
	searchPaths []string
}

// NewLoader creates a new keymap loader.
func NewLoader() *Loader {
	return &Loader{
		searchPaths: make([]string, 0),
	}
}

// AddSearchPath adds a directory to search for keymap files.
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// LoadFile loads a keymap from a TOML, YAML or JSON file. The keymap
// source defaults to the file path.
func (l *Loader) LoadFile(path string) (*Keymap, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening keymap file: %w", err)
	}
	defer f.Close()

	km, err := l.LoadReader(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if km.Source == "" {
		km.Source = path
	}
	if km.Name == "" {
		km.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return km, nil
}

// LoadReader decodes a keymap in the given format.
func (l *Loader) LoadReader(r io.Reader, format Format) (*Keymap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading keymap: %w", err)
	}

	km := &Keymap{}
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, km)
	case FormatYAML:
		err = yaml.Unmarshal(data, km)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(km)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding keymap: %w", err)
	}
	if km.Bindings == nil {
		km.Bindings = make([]Binding, 0)
	}
	return km, nil
}

// LoadAll loads every keymap file found in the search paths, in path
// order and then file name order. Files that fail to load are returned
// as errors alongside the keymaps that did load.
func (l *Loader) LoadAll() ([]*Keymap, []error) {
	keymaps := make([]*Keymap, 0)
	var errs []error

	for _, dir := range l.searchPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, fmt.Errorf("reading keymap dir: %w", err))
			}
			continue
		}

		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if _, err := FormatFromPath(path); err != nil {
				continue
			}
			km, err := l.LoadFile(path)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			keymaps = append(keymaps, km)
		}
	}

	return keymaps, errs
}

// SaveFile writes a keymap in the format implied by the file extension.
func (k *Keymap) SaveFile(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatTOML:
		data, err = toml.Marshal(k)
	case FormatYAML:
		data, err = yaml.Marshal(k)
	default:
		data, err = json.MarshalIndent(k, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling keymap: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing keymap file: %w", err)
	}

	return nil
}
