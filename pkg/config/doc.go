// Package config loads layout parameter files and CLI/server settings.
//
// Layout parameters can be written as TOML, YAML or JSON. Whatever the file
// format, the document is normalised to the JSON parameter object that
// [layout.Decode] understands, so every format accepts the same field names
// (layoutName, nodeSize, tiers, ...).
//
//	p, err := config.LoadParams("planar.toml")
//
// Settings live in a TOML file at $XDG_CONFIG_HOME/graphlayout/config.toml.
// A missing file yields [DefaultSettings]; environment variables override
// connection strings so secrets can stay out of the file.
package config
