package detector

import (
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// defaultPollInterval is how often the bus is scanned when the config
// does not say otherwise.
const defaultPollInterval = 20 * time.Millisecond

// Config holds the detector's tunables.
type Config struct {
	PollIntervalMS int `json:"poll_interval_ms,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.PollIntervalMS < 0 {
		return goutils.NewConfigValidationError(path,
			errors.New("poll_interval_ms must be nonnegative"))
	}
	return nil
}

func (cfg *Config) pollInterval() time.Duration {
	if cfg.PollIntervalMS == 0 {
		return defaultPollInterval
	}
	return time.Duration(cfg.PollIntervalMS) * time.Millisecond
}

// ConfigFromAttributes decodes a raw attribute map into a Config.
func ConfigFromAttributes(attributes map[string]interface{}) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "decoding detector attributes")
	}
	return &cfg, nil
}
