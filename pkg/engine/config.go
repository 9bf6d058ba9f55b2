package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds every tunable of a focus session.
type Config struct {
	// Calibration
	CalibrationFrames int `validate:"min=1"` // valid frames needed for a baseline

	// Gaze
	GazeAwayThreshold float64 `validate:"gt=0,lt=1"` // fixed floor on horizontal gaze deviation
	YawCompensation   float64 `validate:"gte=0"`     // gaze ratio shift per degree of yaw (0 disables)

	// Head pose, degrees from baseline
	HeadYawLimit   float64 `validate:"gt=0,lte=90"`
	HeadPitchLimit float64 `validate:"gt=0,lte=90"`

	// Expression intensities
	EyeBlinkThreshold   float64 `validate:"gt=0,lt=1"`
	JawOpenThreshold    float64 `validate:"gt=0,lt=1"`
	ExpressionPenalties bool

	// Movement
	MovementWindow    int     `validate:"min=2"`
	MovementThreshold float64 `validate:"gt=0"`

	// Timing
	EyesClosedDebounce time.Duration `validate:"gte=0"`
	RollingWindow      time.Duration `validate:"gt=0"`
	ReportInterval     time.Duration `validate:"gt=0"`

	// Mode control
	UnfocusThreshold float64       `validate:"gte=0,lte=100"`
	Cooldown         time.Duration `validate:"gte=0"`
	RecoveryDuration time.Duration `validate:"gte=0"`
	BaseVolume       float64       `validate:"gte=0,lte=1"`
	VolumeBoost      float64       `validate:"gte=0,lte=1"`
}

// DefaultConfig returns the current tuning.
func DefaultConfig() Config {
	return Config{
		CalibrationFrames: 30,

		GazeAwayThreshold: 0.05,
		YawCompensation:   0.004, // ~0.004 ratio units per degree of yaw

		HeadYawLimit:   25,
		HeadPitchLimit: 20,

		EyeBlinkThreshold:   0.3,
		JawOpenThreshold:    0.4,
		ExpressionPenalties: true,

		MovementWindow:    30,
		MovementThreshold: 0.07,

		EyesClosedDebounce: time.Second,
		RollingWindow:      5 * time.Second,
		ReportInterval:     time.Second,

		UnfocusThreshold: 75,
		Cooldown:         30 * time.Second,
		RecoveryDuration: 2 * time.Second,
		BaseVolume:       0.7,
		VolumeBoost:      0.3,
	}
}

// LegacyConfig returns the earlier tuning: a wider gaze floor, a lower
// unfocus threshold, no yaw compensation and no expression penalties.
func LegacyConfig() Config {
	cfg := DefaultConfig()
	cfg.GazeAwayThreshold = 0.12
	cfg.UnfocusThreshold = 50
	cfg.YawCompensation = 0
	cfg.ExpressionPenalties = false
	return cfg
}

// ConfigForProfile returns the preset named by profile ("default" or "legacy").
func ConfigForProfile(profile string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(profile)) {
	case "", "default":
		return DefaultConfig(), nil
	case "legacy":
		return LegacyConfig(), nil
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}
}

var validate = validator.New()

// Validate checks every field against its allowed range.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
