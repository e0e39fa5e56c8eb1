package blockfall

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the controller tuning. Speeds are in cells per second.
type Config struct {
	FallSpeed     float64
	SoftDropSpeed float64
	RepeatDelay   time.Duration
	RepeatRate    time.Duration
	ClearDelay    time.Duration
	SpawnPoint    Vec
}

func DefaultConfig() Config {
	return Config{
		FallSpeed:     1,
		SoftDropSpeed: 20,
		RepeatDelay:   250 * time.Millisecond,
		RepeatRate:    80 * time.Millisecond,
		ClearDelay:    200 * time.Millisecond,
		SpawnPoint:    Vec{X: 5, Y: 20},
	}
}

func (c Config) Validate() error {
	if c.FallSpeed <= 0 {
		return fmt.Errorf("fall speed %v: %w", c.FallSpeed, ErrInvalidConfig)
	}
	if c.SoftDropSpeed <= 0 {
		return fmt.Errorf("soft drop speed %v: %w", c.SoftDropSpeed, ErrInvalidConfig)
	}
	if c.RepeatDelay < 0 || c.RepeatRate < 0 || c.ClearDelay < 0 {
		return fmt.Errorf("negative delay: %w", ErrInvalidConfig)
	}
	return nil
}

type ControllerOption func(*Controller)

func WithConfig(config Config) ControllerOption {
	return func(c *Controller) {
		c.config = config
	}
}

func WithFallSpeed(speed float64) ControllerOption {
	return func(c *Controller) {
		c.config.FallSpeed = speed
	}
}

func WithSoftDropSpeed(speed float64) ControllerOption {
	return func(c *Controller) {
		c.config.SoftDropSpeed = speed
	}
}

// WithRepeat sets the horizontal auto repeat: the wait after the first
// move and the interval between repeats after that.
func WithRepeat(delay, rate time.Duration) ControllerOption {
	return func(c *Controller) {
		c.config.RepeatDelay = delay
		c.config.RepeatRate = rate
	}
}

func WithClearDelay(delay time.Duration) ControllerOption {
	return func(c *Controller) {
		c.config.ClearDelay = delay
	}
}

func WithSpawnPoint(at Vec) ControllerOption {
	return func(c *Controller) {
		c.config.SpawnPoint = at
	}
}

func WithListener(listener Listener) ControllerOption {
	return func(c *Controller) {
		c.listener = listener
	}
}

func WithControllerLogger(logger *log.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
