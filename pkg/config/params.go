package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/layout"
)

// Format is a parameter file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf infers the format from a file extension. Unknown extensions are
// treated as JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatTOML, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unknown format %q (must be one of: json, toml, yaml)", s)
}

// LoadParams reads a parameter file.
func LoadParams(path string) (layout.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "read params %s", path)
	}
	return DecodeParams(data, FormatOf(path))
}

// DecodeParams parses parameters written in format.
func DecodeParams(data []byte, format Format) (layout.Params, error) {
	raw, err := ToJSON(data, format)
	if err != nil {
		return nil, err
	}
	return layout.Decode(raw)
}

// ToJSON converts a TOML or YAML document to JSON. JSON is returned as is.
func ToJSON(data []byte, format Format) ([]byte, error) {
	var doc map[string]any
	switch format {
	case FormatJSON:
		return data, nil
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidParams, err, "parse TOML params")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidParams, err, "parse YAML params")
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown format %q", format)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidParams, err, "convert %s params", format)
	}
	return out, nil
}

// EncodeParams writes p in format, including its layoutName.
func EncodeParams(p layout.Params, format Format) ([]byte, error) {
	raw, err := layout.Encode(p)
	if err != nil {
		return nil, err
	}
	if format == FormatJSON {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "indent params")
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode params")
	}
	dropNulls(doc)

	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode TOML params")
		}
		return buf.Bytes(), nil
	case FormatYAML:
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode YAML params")
		}
		return out, nil
	}
	return nil, errs.New(errs.ErrCodeInvalidInput, "unknown format %q", format)
}

// dropNulls removes null values, which TOML cannot represent.
func dropNulls(m map[string]any) {
	for k, v := range m {
		switch v := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			dropNulls(v)
		}
	}
}
