package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is vibe.yaml: project-level settings a script itself has no business
// naming (where to audit interactions, where the recall store lives, what
// address to serve on) — a sibling concept to the teacher's own pkg/fpm/config
// pool file, one level up from anything a `.vibe` program declares itself.
type Config struct {
	Audit struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"audit"`
	Memory struct {
		DSN            string `yaml:"dsn"`
		EmbedderAPIKey string `yaml:"embedderApiKey"`
		EmbedderURL    string `yaml:"embedderUrl"`
	} `yaml:"memory"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	LogAIInteractions bool `yaml:"logAiInteractions"`
}

// loadConfig reads path as a vibe.yaml. A missing file is not an error — the
// CLI runs fine with the defaults: server.addr is ":8080" and every other
// field is at its zero value. A file that omits server.addr keeps ":8080".
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
