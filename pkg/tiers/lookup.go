package tiers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// Lookup returns the value at path in a node's attributes.
func Lookup(attrs simgraph.Attributes, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	if v, ok := attrs[path]; ok && v != nil {
		return v, true
	}
	parts := strings.Split(path, ".")
	if v, ok := traverse(map[string]any(attrs), parts); ok {
		return v, true
	}
	if extras, ok := asMap(attrs[simgraph.AttrExtras]); ok {
		if v, ok := traverse(extras, parts); ok {
			return v, true
		}
	}
	if meta, ok := asMap(attrs[simgraph.AttrOriginalMeta]); ok {
		rest := strings.TrimPrefix(path, "meta.")
		if v, ok := traverse(meta, strings.Split(rest, ".")); ok {
			return v, true
		}
	}
	return nil, false
}

func traverse(m map[string]any, parts []string) (any, bool) {
	var cur any = m
	for _, p := range parts {
		next, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = next[p]; !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case simgraph.Attributes:
		return m, true
	}
	return nil, false
}

// Key renders an attribute value as a group or order key. Whole numbers
// print without a fractional part.
func Key(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}
