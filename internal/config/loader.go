// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC timezone to prevent drift bugs in night arithmetic.
//  2. Load a .env file via godotenv (non-fatal if absent).
//  3. Use envconfig to process struct tags and populate the Config struct.
//  4. Apply the default tile source list when none was configured.
//  5. Validate the struct using go-playground/validator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"skyview/internal/types"
)

// Load reads, defaults, and validates the process configuration.
// Any missing required value or invalid format fails the load; callers are
// expected to treat that as fatal at startup (fail fast).
func Load() (*Config, error) {
	// All night arithmetic is UTC; pin the process timezone so stray
	// time.Local usage cannot drift across the noon boundary.
	time.Local = time.UTC

	// A missing .env file is the normal production case.
	_ = godotenv.Load()

	// Tags carry the full SKYVIEW_-prefixed variable names, so no process
	// prefix: envconfig would otherwise compose struct-path keys (e.g.
	// SKYVIEW_SEQUENCER_START_HOUR) and accept bare unprefixed fallbacks.
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, types.NewAppError(types.ErrCodeConfigInvalid, "processing environment", err)
	}

	if len(cfg.Overview.TileURLs) == 0 || (len(cfg.Overview.TileURLs) == 1 && cfg.Overview.TileURLs[0] == "") {
		cfg.Overview.TileURLs = strings.Split(defaultTileURLs, ",")
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks a Config against its struct tags plus the cross-field
// rules that tags cannot express.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return types.NewAppError(types.ErrCodeConfigInvalid, "validating configuration", err)
	}

	// The morning window must close no later than the encode deadline,
	// otherwise the sequencer would have no encode phase at all.
	if cfg.Sequencer.MorningEndHour > cfg.Sequencer.EncodeDeadlineHour {
		return types.NewAppError(
			types.ErrCodeConfigInvalid,
			fmt.Sprintf("morning end hour %d is after encode deadline hour %d",
				cfg.Sequencer.MorningEndHour, cfg.Sequencer.EncodeDeadlineHour),
			nil,
		)
	}

	// Acquisition must start in the evening, after the encode deadline;
	// an earlier start would overlap the encode window of the same day.
	if cfg.Sequencer.StartHour < cfg.Sequencer.EncodeDeadlineHour {
		return types.NewAppError(
			types.ErrCodeConfigInvalid,
			fmt.Sprintf("start hour %d is before encode deadline hour %d",
				cfg.Sequencer.StartHour, cfg.Sequencer.EncodeDeadlineHour),
			nil,
		)
	}

	return nil
}
