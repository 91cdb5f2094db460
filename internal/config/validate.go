package config

import (
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/input/keymap"
)

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Validate checks every setting and returns all failures joined.
// Each failure is a *ValidationError.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, msg string, value any, code ValidationErrorCode) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value, Code: code})
	}

	if c.Hotkeys.IndicatorDuration <= 0 {
		add("hotkeys.indicator_duration", "must be positive", c.Hotkeys.IndicatorDuration, ErrCodeOutOfRange)
	}
	for _, t := range c.Hotkeys.IgnoreTargets {
		if t == "" {
			add("hotkeys.ignore_targets", "empty target kind", nil, ErrCodeRequiredMissing)
		}
	}

	if c.Hint.ShowDelay < 0 {
		add("hint.show_delay", "must not be negative", c.Hint.ShowDelay, ErrCodeOutOfRange)
	}
	if c.Hint.HideAfter <= 0 {
		add("hint.hide_after", "must be positive", c.Hint.HideAfter, ErrCodeOutOfRange)
	}
	if c.Hint.ToggleKey == "" {
		add("hint.toggle_key", "required", nil, ErrCodeRequiredMissing)
	} else if _, err := key.ParseCombo(c.Hint.ToggleKey); err != nil {
		add("hint.toggle_key", err.Error(), c.Hint.ToggleKey, ErrCodeInvalidEnum)
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "unknown level", c.Log.Level, ErrCodeInvalidEnum)
	}
	if c.Log.Format != FormatConsole && c.Log.Format != FormatJSON {
		add("log.format", fmt.Sprintf("must be %q or %q", FormatConsole, FormatJSON), c.Log.Format, ErrCodeInvalidEnum)
	}

	if c.Server.Addr == "" {
		add("server.addr", "required", nil, ErrCodeRequiredMissing)
	}
	if c.Server.PingInterval <= 0 {
		add("server.ping_interval", "must be positive", c.Server.PingInterval, ErrCodeOutOfRange)
	}
	if c.Server.ReadTimeout <= c.Server.PingInterval {
		add("server.read_timeout", "must exceed ping_interval", c.Server.ReadTimeout, ErrCodeOutOfRange)
	}
	if c.Server.WriteTimeout <= 0 {
		add("server.write_timeout", "must be positive", c.Server.WriteTimeout, ErrCodeOutOfRange)
	}
	if c.Server.MaxMessageSize <= 0 {
		add("server.max_message_size", "must be positive", c.Server.MaxMessageSize, ErrCodeOutOfRange)
	}

	inline := &keymap.Keymap{Bindings: c.Keymap.Bindings}
	if err := inline.Validate(); err != nil {
		add("keymap.bindings", err.Error(), nil, ErrCodeTypeMismatch)
	}

	return errors.Join(errs...)
}
