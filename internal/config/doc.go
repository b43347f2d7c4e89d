// Package config loads the mezzo settings.
//
// Settings come from layers, later ones overriding earlier ones:
//
//  1. built-in defaults
//  2. a TOML or YAML file
//  3. MEZZO_* environment variables
//  4. explicit overrides, such as command-line flags
//
// The merged map is decoded into a typed Config and validated:
//
//	cfg, err := config.Load(config.WithFile("mezzo.toml"))
//	if err != nil {
//	    return err
//	}
//	doc := document.New(document.WithTextOptions(cfg.TextOptions()...))
//
// A file layer looks like:
//
//	[text]
//	chunkSize = 1000
//	measurer = "runewidth"
//
//	[highlight]
//	budget = 20000
//	density = 2000
package config
