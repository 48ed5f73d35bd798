// Package config loads the detection output configuration from defaults, a
// YAML file and CFG_ prefixed environment variables, in that order.
package config

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detection-output/models/ssd"
)

// LogConfig defines logging configurations
type LogConfig struct {
	Debug bool `koanf:"debug"`
}

// AppConfig defines the whole application configuration.
type AppConfig struct {
	Log             LogConfig  `koanf:"log"`
	DetectionOutput ssd.Params `koanf:"detectionoutput"`
}

// Config - Global variable to export
var Config AppConfig

// defaults mirror ssd.DefaultParams so a file only has to name what differs.
func defaults() map[string]any {
	p := ssd.DefaultParams()
	return map[string]any{
		"log.debug":                         false,
		"detectionoutput.sharelocation":     p.ShareLocation,
		"detectionoutput.backgroundlabelid": p.BackgroundLabelID,
		"detectionoutput.codetype":          string(p.CodeType),
		"detectionoutput.nms.threshold":     p.NMS.IoUThreshold,
		"detectionoutput.nms.topk":          p.NMS.TopK,
		"detectionoutput.numworkers":        p.NumWorkers,
	}
}

// Load reads the configuration at filePath without touching the global Config.
//
// Arguments:
//   - filePath: The YAML file. Empty skips the file and uses defaults and
//     environment only.
//
// Returns:
//   - The decoded and validated configuration.
//   - An error if a source cannot be read or the result is invalid.
func Load(filePath string) (AppConfig, error) {
	var cfg AppConfig
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return cfg, errors.Wrap(err, "loading defaults")
	}

	if filePath != "" {
		if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
			return cfg, errors.Wrapf(err, "loading %s", filePath)
		}
	}

	if err := k.Load(env.ProviderWithValue("CFG_", ".", func(s string, v string) (string, any) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CFG_")), "_", ".")
		if strings.Contains(v, ",") {
			return key, strings.Split(strings.TrimSpace(v), ",")
		}
		return key, v
	}), nil); err != nil {
		return cfg, errors.Wrap(err, "loading environment")
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, errors.Wrap(err, "decoding configuration")
	}

	return cfg, ValidateConfig(&cfg)
}

// Init - Assign global config to decoded config struct
func Init(filePath string) error {
	cfg, err := Load(filePath)
	if err != nil {
		return err
	}
	Config = cfg
	return nil
}

// ValidateConfig checks the detection output parameters.
func ValidateConfig(cfg *AppConfig) error {
	return cfg.DetectionOutput.Validate()
}

// DefaultConfigPath is the configuration file used when none is given.
const DefaultConfigPath = "config/config.yaml"
