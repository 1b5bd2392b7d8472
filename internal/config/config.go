package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"twentyeight/internal/domain"

	"github.com/caarlos0/env/v11"
)

// TableConfig holds the tunable ruleset and match behaviour for a table.
// File values come from a JSON config in the data folder; Nakama runtime
// environment entries override individual fields.
type TableConfig struct {
	HandSize         int    `json:"hand_size" env:"TWENTYEIGHT_HAND_SIZE"`
	KittySize        int    `json:"kitty_size" env:"TWENTYEIGHT_KITTY_SIZE"`
	MinBid           int    `json:"min_bid" env:"TWENTYEIGHT_MIN_BID"`
	BidStep          int    `json:"bid_step" env:"TWENTYEIGHT_BID_STEP"`
	MaxBid           int    `json:"max_bid" env:"TWENTYEIGHT_MAX_BID"`
	PenaltyScale     int    `json:"penalty_scale" env:"TWENTYEIGHT_PENALTY_SCALE"`
	KittyToLastTrick *bool  `json:"kitty_to_last_trick" env:"TWENTYEIGHT_KITTY_TO_LAST_TRICK"`
	Rotation         string `json:"rotation" env:"TWENTYEIGHT_ROTATION"` // "clockwise" or "counterclockwise"

	BotsEnabled      bool `json:"bots_enabled" env:"TWENTYEIGHT_BOTS_ENABLED"`
	BotMinDelaySec   int  `json:"bot_min_delay_sec" env:"TWENTYEIGHT_BOT_MIN_DELAY_SEC"`
	BotMaxDelaySec   int  `json:"bot_max_delay_sec" env:"TWENTYEIGHT_BOT_MAX_DELAY_SEC"`
	BotAutoFillDelay int  `json:"bot_auto_fill_delay_sec" env:"TWENTYEIGHT_BOT_AUTO_FILL_DELAY_SEC"`

	RejoinTokenSecret string `json:"-" env:"TWENTYEIGHT_REJOIN_SECRET"`
	RejoinTokenTTLSec int    `json:"rejoin_token_ttl_sec" env:"TWENTYEIGHT_REJOIN_TTL_SEC"`
}

var (
	cfg      *TableConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadTableConfig loads the table configuration file once. A missing
// file is not an error; defaults apply.
func LoadTableConfig(path string) error {
	loadOnce.Do(func() {
		c := defaults()
		data, err := os.ReadFile(path)
		if err == nil {
			if err := json.Unmarshal(data, &c); err != nil {
				loadErr = fmt.Errorf("failed to unmarshal table config: %w", err)
				return
			}
		} else if !os.IsNotExist(err) {
			loadErr = fmt.Errorf("failed to read table config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetTableConfig returns the loaded configuration, or defaults when no
// file has been loaded.
func GetTableConfig() TableConfig {
	if cfg == nil {
		return defaults()
	}
	return *cfg
}

// ApplyEnv overrides configuration fields from the given environment
// map (Nakama's RUNTIME_CTX_ENV).
func ApplyEnv(c TableConfig, environ map[string]string) (TableConfig, error) {
	if err := env.ParseWithOptions(&c, env.Options{Environment: environ}); err != nil {
		return c, fmt.Errorf("failed to parse env overrides: %w", err)
	}
	return c, nil
}

// Rules materializes the domain ruleset from the configuration and
// validates the conservation invariant.
func (c TableConfig) Rules() (domain.Rules, error) {
	r := domain.DefaultRules()
	if c.HandSize > 0 {
		r.HandSize = c.HandSize
	}
	if c.KittySize >= 0 {
		r.KittySize = c.KittySize
	}
	if c.MinBid > 0 {
		r.MinBid = c.MinBid
	}
	if c.BidStep > 0 {
		r.BidStep = c.BidStep
	}
	if c.MaxBid > 0 {
		r.MaxBid = c.MaxBid
	}
	if c.PenaltyScale > 0 {
		r.PenaltyScale = c.PenaltyScale
	}
	if c.KittyToLastTrick != nil {
		r.KittyToLastTrick = *c.KittyToLastTrick
	}
	switch c.Rotation {
	case "", "clockwise":
		r.Direction = domain.Clockwise
	case "counterclockwise":
		r.Direction = domain.CounterClockwise
	default:
		return r, fmt.Errorf("unknown rotation %q", c.Rotation)
	}
	if err := r.Validate(); err != nil {
		return r, err
	}
	return r, nil
}

func defaults() TableConfig {
	return TableConfig{
		KittySize:         -1, // -1 means "use the ruleset default"
		BotMinDelaySec:    1,
		BotMaxDelaySec:    3,
		BotAutoFillDelay:  5,
		RejoinTokenTTLSec: 300,
	}
}
