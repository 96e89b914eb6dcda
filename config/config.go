// Package config loads the uatypes runtime configuration: decoding limits,
// the namespace table and the NodeSet2 documents whose structures are
// added to the type registry.
//
// Files are YAML (.yaml, .yml) or JSON with comments (.json, .jsonc).
// Unknown fields are rejected in both formats.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	j "github.com/goccy/go-json"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/reoring/uatypes"
	"github.com/reoring/uatypes/nodeset"
)

// EnvVar names the environment variable consulted when no path is given.
const EnvVar = "UATYPES_CONFIG"

// Format is a configuration file syntax.
type Format int

const (
	FormatYAML Format = iota
	FormatJSONC
)

// Config is the decoded configuration file.
type Config struct {
	// Limits starts from uatypes.DefaultDecodingLimits; fields absent from
	// the file keep their default.
	Limits     uatypes.DecodingLimits `yaml:"limits" json:"limits"`
	Namespaces []string               `yaml:"namespaces" json:"namespaces"`
	// NodeSets are NodeSet2 files (optionally .zst or .lz4), relative to
	// the configuration file's directory.
	NodeSets        []string `yaml:"nodesets" json:"nodesets"`
	LenientNodeSets bool     `yaml:"lenient_nodesets" json:"lenient_nodesets"`
	// MaxNodeSetSize bounds each decompressed document; zero selects
	// nodeset.DefaultMaxDocumentSize.
	MaxNodeSetSize int64 `yaml:"max_nodeset_size" json:"max_nodeset_size"`

	dir string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Limits: uatypes.DefaultDecodingLimits()}
}

// FormatOf selects the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSONC, nil
	}
	return 0, fmt.Errorf("config %s: unknown extension (want .yaml, .yml, .json or .jsonc)", path)
}

// Parse decodes data and validates the result.
func Parse(data []byte, format Format) (*Config, error) {
	c := Default()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case FormatJSONC:
		dec := j.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config format %d", format)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	c, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.dir = filepath.Dir(path)
	return c, nil
}

// Resolve picks the configuration path: the explicit path when set, else
// $UATYPES_CONFIG. It returns "" when neither is set.
func Resolve(path string) string {
	if path != "" {
		return path
	}
	return os.Getenv(EnvVar)
}

// LoadOrDefault loads the resolved path, or returns Default when there is
// none.
func LoadOrDefault(path string) (*Config, error) {
	if p := Resolve(path); p != "" {
		return Load(p)
	}
	return Default(), nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	l := c.Limits
	for name, v := range map[string]int{
		"max_message_size":       l.MaxMessageSize,
		"max_chunk_size":         l.MaxChunkSize,
		"max_chunk_count":        l.MaxChunkCount,
		"max_string_length":      l.MaxStringLength,
		"max_byte_string_length": l.MaxByteStringLength,
		"max_array_length":       l.MaxArrayLength,
		"max_recursion_depth":    l.MaxRecursionDepth,
	} {
		if v < 0 {
			return fmt.Errorf("limits.%s: must not be negative", name)
		}
	}
	seen := map[string]bool{uatypes.OPCUANamespaceURI: true}
	for i, uri := range c.Namespaces {
		switch {
		case uri == "":
			return fmt.Errorf("namespaces[%d]: empty URI", i)
		case seen[uri]:
			return fmt.Errorf("namespaces[%d]: duplicate or reserved URI %q", i, uri)
		}
		seen[uri] = true
	}
	if c.MaxNodeSetSize < 0 {
		return fmt.Errorf("max_nodeset_size: must not be negative")
	}
	return nil
}

func (c *Config) nodeSetPath(p string) string {
	if filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Build loads the configured nodesets and returns the shared context:
// configured namespaces followed by any further nodeset namespaces, and a
// registry of StandardTypes plus every nodeset dictionary.
func (c *Config) Build(logger *slog.Logger) (*uatypes.Context, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	namespaces := append([]string(nil), c.Namespaces...)
	known := map[string]bool{uatypes.OPCUANamespaceURI: true}
	for _, uri := range namespaces {
		known[uri] = true
	}
	for _, p := range c.NodeSets {
		uris, err := nodeset.NamespaceURIs(c.nodeSetPath(p))
		if err != nil {
			return nil, fmt.Errorf("nodeset %s: %w", p, err)
		}
		for _, uri := range uris {
			if !known[uri] {
				known[uri] = true
				namespaces = append(namespaces, uri)
			}
		}
	}
	limits := c.Limits
	boot := uatypes.NewContext(uatypes.ContextOptions{Limits: &limits, Namespaces: namespaces, Logger: logger})
	groups := []uatypes.TypeLoaderGroup{uatypes.StandardTypes()}
	for _, p := range c.NodeSets {
		set, err := nodeset.LoadFile(c.nodeSetPath(p), nodeset.LoadOptions{
			Context:         boot,
			Lenient:         c.LenientNodeSets,
			Logger:          logger,
			MaxDocumentSize: c.MaxNodeSetSize,
		})
		if err != nil {
			return nil, err
		}
		dict, err := set.Dictionary()
		if err != nil {
			return nil, fmt.Errorf("nodeset %s: %w", p, err)
		}
		logger.Info("nodeset registered", "path", p, "structures", len(dict.Structures), "type_loaders", len(dict.TypeLoaders()))
		groups = append(groups, dict)
	}
	reg, err := uatypes.NewRegistry(groups...)
	if err != nil {
		return nil, err
	}
	if err := reg.Check(boot.Namespaces()); err != nil {
		return nil, err
	}
	return uatypes.NewContext(uatypes.ContextOptions{
		Limits:     &limits,
		Namespaces: namespaces,
		Registry:   reg,
		Logger:     logger,
	}), nil
}
