package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default threshold values. User-supplied settings merge over these:
// an unset field keeps its default.
const (
	DefaultCleanupDays              = 14
	DefaultMaxEmptyBeforePause      = 3
	DefaultMaxLossesBeforeBlacklist = 3
	DefaultDryPauseHours            = 6
)

// Settings holds the tunable thresholds that drive target cleanup and the
// status rule engine.
type Settings struct {
	// CleanupDays is how many days a target may go without activity before
	// the cleanup sweep removes it.
	CleanupDays int `yaml:"cleanup_days" json:"cleanup_days"`

	// MaxEmptyBeforePause pauses a target after this many consecutive
	// near-empty raids.
	MaxEmptyBeforePause int `yaml:"max_empty_before_pause" json:"max_empty_before_pause"`

	// MaxLossesBeforeBlacklist blacklists a target after this many
	// consecutive raids with troop losses.
	MaxLossesBeforeBlacklist int `yaml:"max_losses_before_blacklist" json:"max_losses_before_blacklist"`

	// DryPauseHours is how long a "dry" pause lasts before the target
	// becomes eligible again.
	DryPauseHours float64 `yaml:"dry_pause_hours" json:"dry_pause_hours"`
}

// Defaults returns a Settings pre-populated with default values.
func Defaults() Settings {
	return Settings{
		CleanupDays:              DefaultCleanupDays,
		MaxEmptyBeforePause:      DefaultMaxEmptyBeforePause,
		MaxLossesBeforeBlacklist: DefaultMaxLossesBeforeBlacklist,
		DryPauseHours:            DefaultDryPauseHours,
	}
}

// Load reads and parses the settings file at path. Missing fields keep
// their defaults; the result is validated before being returned.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("settings: read %q: %w", path, err)
	}

	s := Defaults()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: parse yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings: %w", err)
	}
	return s, nil
}

// Merge returns s with zero-valued fields replaced by defaults. Used when
// settings arrive from a persisted snapshot rather than a yaml file.
func (s Settings) Merge() Settings {
	d := Defaults()
	if s.CleanupDays == 0 {
		s.CleanupDays = d.CleanupDays
	}
	if s.MaxEmptyBeforePause == 0 {
		s.MaxEmptyBeforePause = d.MaxEmptyBeforePause
	}
	if s.MaxLossesBeforeBlacklist == 0 {
		s.MaxLossesBeforeBlacklist = d.MaxLossesBeforeBlacklist
	}
	if s.DryPauseHours == 0 {
		s.DryPauseHours = d.DryPauseHours
	}
	return s
}

// Validate checks structural constraints on the settings.
func (s Settings) Validate() error {
	if s.CleanupDays <= 0 {
		return fmt.Errorf("cleanup_days must be positive, got %d", s.CleanupDays)
	}
	if s.MaxEmptyBeforePause <= 0 {
		return fmt.Errorf("max_empty_before_pause must be positive, got %d", s.MaxEmptyBeforePause)
	}
	if s.MaxLossesBeforeBlacklist <= 0 {
		return fmt.Errorf("max_losses_before_blacklist must be positive, got %d", s.MaxLossesBeforeBlacklist)
	}
	if s.DryPauseHours <= 0 {
		return fmt.Errorf("dry_pause_hours must be positive, got %g", s.DryPauseHours)
	}
	return nil
}

// DryPause returns the dry-pause threshold as a duration.
func (s Settings) DryPause() time.Duration {
	return time.Duration(s.DryPauseHours * float64(time.Hour))
}

// CleanupAge returns the cleanup threshold as a duration.
func (s Settings) CleanupAge() time.Duration {
	return time.Duration(s.CleanupDays) * 24 * time.Hour
}
