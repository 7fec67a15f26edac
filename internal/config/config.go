// Package config resolves process configuration: an optional YAML file
// layered under environment-variable and CLI-flag overrides, the same
// config/env/default precedence the teacher's ServerConfig port
// getters use, generalized from four hardcoded ports to the full
// option set spec §6 lists.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full set of options either process (client or server)
// reads, populated by cmdparser.Parse from CLI args layered over a
// YAML file's defaults.
type Config struct {
	Server bool `yaml:"server"`
	Client bool `yaml:"client"`

	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	CmdPort int    `yaml:"cmd_port"`

	AssetPath  string `yaml:"asset_path"`
	SavePath   string `yaml:"save_path"`
	WorldName  string `yaml:"world_name"`
	PlayerName string `yaml:"player_name"`

	Seed int64 `yaml:"seed"`

	NoVsync    bool `yaml:"no_vsync"`
	NoKeyboard bool `yaml:"no_keyboard"`
	NoMouse    bool `yaml:"no_mouse"`
	NoHUD      bool `yaml:"no_hud"`
	NoAudio    bool `yaml:"no_audio"`

	DisableDoubleBuffer bool `yaml:"-"`
	Multisampling       int  `yaml:"-"`

	// RunFrames/RunDuration implement -n/-t's "exit after N
	// frames/ms" hooks; zero means run indefinitely.
	RunFrames   int `yaml:"-"`
	RunDuration int `yaml:"-"` // milliseconds
}

// Default returns the built-in defaults every option falls back to
// before the YAML/env/CLI layers apply.
func Default() Config {
	return Config{
		Host:       "0.0.0.0",
		Port:       12354,
		CmdPort:    12355,
		AssetPath:  "assets",
		SavePath:   "saves",
		WorldName:  "world",
		PlayerName: "player",
	}
}

// Load reads a YAML file at path over the defaults. A missing file is
// not an error — callers proceed with Default() plus CLI overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// EnvOverride applies GAME_* environment variables over cfg, sitting
// between the file and explicit CLI flags in precedence — mirrors the
// teacher's getPortWithEnvFallback chain (config, then env, then
// hardcoded default).
func (c *Config) EnvOverride() {
	if v := os.Getenv("GAME_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("GAME_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Port = n
		}
	}
	if v := os.Getenv("GAME_CMD_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.CmdPort = n
		}
	}
	if v := os.Getenv("GAME_SAVE_PATH"); v != "" {
		c.SavePath = v
	}
}
