// Package config loads snippet library files. A library declares named
// snippets (body plus optional prefix, description and variable
// overrides) and library-wide defaults. Both HCL and YAML are
// supported; the extension decides which parser runs.
package config

import (
	"bytes"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Library is one snippet library file.
type Library struct {
	// Defaults apply to every snippet in the library.
	Defaults *DefaultsBlock `json:"defaults,omitempty" hcl:"defaults,block" yaml:"defaults,omitempty"`

	// Snippets are the declared snippets, in file order.
	Snippets []*Entry `json:"snippets" hcl:"snippet,block" yaml:"snippets"`
}

// DefaultsBlock holds library-wide settings.
type DefaultsBlock struct {
	// Variables seeds the lookup table of every snippet; per-snippet
	// variables override these.
	Variables map[string]string `json:"variables,omitempty" hcl:"variables,optional" yaml:"variables,omitempty"`
}

// Entry is one declared snippet.
type Entry struct {
	Name        string `json:"name" hcl:"name,label" yaml:"name"`
	Prefix      string `json:"prefix,omitempty" hcl:"prefix,optional" yaml:"prefix,omitempty"`
	Description string `json:"description,omitempty" hcl:"description,optional" yaml:"description,omitempty"`

	// Body is the snippet grammar text. In HCL libraries a literal
	// `${` collides with HCL's template interpolation and must be
	// written `$${`; HCL evaluates it back to `${`. YAML bodies need
	// no escaping.
	Body string `json:"body" hcl:"body,attr" yaml:"body"`

	// Variables override library defaults for this snippet only.
	Variables map[string]string `json:"variables,omitempty" hcl:"variables,optional" yaml:"variables,omitempty"`
}

// Load reads a library file. Files ending in .yaml or .yml parse as
// YAML with unknown fields rejected; everything else parses as HCL.
func Load(fsys afero.Fs, path string) (*Library, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Errorf("reading library file: %w", err)
	}

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		var lib Library
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&lib); err != nil {
			return nil, errors.Errorf("parsing YAML library %s: %w", path, err)
		}
		return &lib, nil
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL library %s: %s", path, diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var lib Library
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &lib)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL library %s: %s", path, diags.Error())
	}
	return &lib, nil
}

// Lookup finds a snippet by name.
func (l *Library) Lookup(name string) (*Entry, bool) {
	for _, e := range l.Snippets {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// ByPrefix returns every snippet whose prefix starts with the typed
// text, in file order.
func (l *Library) ByPrefix(typed string) []*Entry {
	var out []*Entry
	for _, e := range l.Snippets {
		if e.Prefix != "" && strings.HasPrefix(e.Prefix, typed) {
			out = append(out, e)
		}
	}
	return out
}

// LookupTable merges the library defaults with the entry's own
// variables, entry values winning. The result seeds snippet
// normalization and is safe to mutate.
func (l *Library) LookupTable(e *Entry) map[string]string {
	merged := map[string]string{}
	if l.Defaults != nil {
		for k, v := range l.Defaults.Variables {
			merged[k] = v
		}
	}
	for k, v := range e.Variables {
		merged[k] = v
	}
	return merged
}
