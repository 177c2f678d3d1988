package config

import (
	"github.com/TypeTerrors/gonfig"
)

const DefaultConfigFile = "config/config.yaml"

// Load reads path (placeholders expanded from the environment and .env) and
// fills in defaults for anything left unset.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	cfg, err := gonfig.Load[Config](
		gonfig.WithConfigFile(path),
		gonfig.WithDotenv(".env"), // ignored if missing
		gonfig.WithStrict(),       // fail if ${VAR} has no value/default
	)
	if err != nil {
		return Config{}, err
	}
	return cfg.WithDefaults(), nil
}
