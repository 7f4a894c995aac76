package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

type Source struct {
	Kind   SourceKind
	Name   string // for defaults
	File   string
	Line   int
	Column int
}

func (s Source) String() string {
	if s.Kind == SourceFile && s.File != "" {
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
	if s.Name != "" {
		return string(s.Kind) + " (" + s.Name + ")"
	}
	return string(s.Kind)
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML-path -> last writer source (file only)
	Files   []string          // all loaded files, in load order
}

// Load reads the merged configuration from the standard location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources loads config and returns file-level sources for introspection.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and everything it includes. A missing file yields
// the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &fileLoader{
		seen:    map[string]bool{},
		sources: map[string]Source{},
	}
	if _, err := os.Stat(path); err == nil {
		if err := l.load(path); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg, err := BuildEffectiveConfig(l.raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, withSource(err, l.sources)
	}
	return &LoadResult{Config: cfg, Sources: l.sources, Files: l.files}, nil
}

// fileLoader merges a config file after everything it includes, depth first.
// A file reached through two includes is merged once.
type fileLoader struct {
	seen    map[string]bool
	chain   []string
	raw     RawConfig
	sources map[string]Source
	files   []string
}

func (l *fileLoader) load(path string) error {
	file := canonicalPath(path)
	if slices.Contains(l.chain, file) {
		return fmt.Errorf("include cycle detected: %s -> %s", strings.Join(l.chain, " -> "), file)
	}
	if l.seen[file] {
		return nil
	}
	l.seen[file] = true

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("%s: failed to read: %w", file, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	var raw RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && err != io.EOF {
		return fmt.Errorf("%s: %w", file, err)
	}

	sources := map[string]Source{}
	if len(doc.Content) > 0 {
		recordSources(doc.Content[0], file, "", sources)
	}

	l.chain = append(l.chain, file)
	for _, inc := range raw.Include {
		paths, err := includedFiles(file, inc)
		if err != nil {
			return fmt.Errorf("%s: include %q: %w", sources["include"], inc, err)
		}
		for _, p := range paths {
			if err := l.load(p); err != nil {
				return err
			}
		}
	}
	l.chain = l.chain[:len(l.chain)-1]

	// The including file wins over what it includes.
	l.raw = l.raw.merge(raw)
	maps.Copy(l.sources, sources)
	l.files = append(l.files, file)
	return nil
}

// canonicalPath resolves symlinks so cycles are found whatever the spelling.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

// includedFiles resolves an include relative to the including file. A
// directory contributes its *.yaml and *.yml files in name order.
func includedFiles(from, include string) ([]string, error) {
	if include == "" {
		return nil, fmt.Errorf("path is empty")
	}
	if include == "~" || strings.HasPrefix(include, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		include = filepath.Join(home, strings.TrimPrefix(include, "~"))
	}
	if !filepath.IsAbs(include) {
		include = filepath.Join(filepath.Dir(from), include)
	}

	info, err := os.Stat(include)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{include}, nil
	}

	entries, err := os.ReadDir(include)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			if !ent.IsDir() {
				files = append(files, filepath.Join(include, ent.Name()))
			}
		}
	}
	slices.Sort(files)
	return files, nil
}

// recordSources maps every dotted key path under node to the position of its
// value.
func recordSources(node *yaml.Node, file, prefix string, out map[string]Source) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		if prefix != "" {
			key = prefix + "." + key
		}
		out[key] = Source{Kind: SourceFile, File: file, Line: val.Line, Column: val.Column}
		recordSources(val, file, key, out)
	}
}

// withSource points a validation error at the file position that set the
// offending value.
func withSource(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return err
}
