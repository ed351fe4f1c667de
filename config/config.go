// Package config holds user preferences. Keys are the lower-cased flag names without
// hyphens, so a flag --long-press-timeout-ms reads longPressTimeoutMs from the config file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dasdy/softkeys/gesture"
	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/logging"
	"github.com/dasdy/softkeys/loop"
	"github.com/dasdy/softkeys/session"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

const EnvPrefix = "softkeys"

var ErrInvalidPreference = errors.New("invalid preference")

var logCtx = logging.PackageCtx("config")

// Preferences are the user settings. A zero Height uses the keyboard's own height.
type Preferences struct {
	LayoutFile string `mapstructure:"layoutfile" toml:"layoutFile"`
	Keyboard   string `mapstructure:"keyboard" toml:"keyboard"`
	Width      int    `mapstructure:"width" toml:"width"`
	Height     int    `mapstructure:"height" toml:"height"`
	Landscape  bool   `mapstructure:"landscape" toml:"landscape"`

	LongPressTimeoutMs int     `mapstructure:"longpresstimeoutms" toml:"longPressTimeoutMs"`
	RepeatStartDelayMs int     `mapstructure:"repeatstartdelayms" toml:"repeatStartDelayMs"`
	RepeatIntervalMs   int     `mapstructure:"repeatintervalms" toml:"repeatIntervalMs"`
	SwipeEnabled       bool    `mapstructure:"swipeenabled" toml:"swipeEnabled"`
	SwipeTravel        float64 `mapstructure:"swipetravel" toml:"swipeTravel"`
	SwipeVelocity      float64 `mapstructure:"swipevelocity" toml:"swipeVelocity"`
	DebounceMs         int     `mapstructure:"debouncems" toml:"debounceMs"`
	MultiTapIntervalMs int     `mapstructure:"multitapintervalms" toml:"multiTapIntervalMs"`

	ProximityMultiplier float64 `mapstructure:"proximitymultiplier" toml:"proximityMultiplier"`
	PopupsEnabled       bool    `mapstructure:"popupsenabled" toml:"popupsEnabled"`
	PopupColumns        int     `mapstructure:"popupcolumns" toml:"popupColumns"`
	HookShiftNum        bool    `mapstructure:"hookshiftnum" toml:"hookShiftNum"`
	HookShiftSymbol     bool    `mapstructure:"hookshiftsymbol" toml:"hookShiftSymbol"`
	LabelUppercase      bool    `mapstructure:"labeluppercase" toml:"labelUppercase"`

	Storage string `mapstructure:"storage" toml:"storage"`
	Port    int    `mapstructure:"port" toml:"port"`
}

func Defaults() Preferences {
	g := gesture.DefaultConfig()

	return Preferences{
		LayoutFile:          "data/qwerty.yaml",
		Width:               1080,
		LongPressTimeoutMs:  int(g.LongPressTimeout.Milliseconds()),
		RepeatStartDelayMs:  int(g.RepeatStartDelay.Milliseconds()),
		RepeatIntervalMs:    int(g.RepeatInterval.Milliseconds()),
		SwipeEnabled:        g.SwipeEnabled,
		SwipeTravel:         g.SwipeTravel,
		SwipeVelocity:       g.SwipeVelocity,
		DebounceMs:          int(g.DebounceTime.Milliseconds()),
		MultiTapIntervalMs:  int(g.MultiTapInterval.Milliseconds()),
		ProximityMultiplier: keyboard.DefaultProximityMultiplier,
		PopupsEnabled:       g.PopupsEnabled,
		PopupColumns:        8,
		Storage:             "./softkeys.sqlite",
		Port:                3000,
	}
}

// SetDefaults registers every preference key with its default, which also makes the
// keys visible to environment lookups.
func SetDefaults(v *viper.Viper) {
	d := reflect.ValueOf(Defaults())
	t := d.Type()

	for i := range t.NumField() {
		v.SetDefault(t.Field(i).Tag.Get("mapstructure"), d.Field(i).Interface())
	}
}

// Load reads preferences from v on top of the defaults.
func Load(v *viper.Viper) (Preferences, error) {
	p := Defaults()
	if err := v.Unmarshal(&p); err != nil {
		return p, fmt.Errorf("could not decode preferences: %w", err)
	}

	if err := p.Validate(); err != nil {
		return p, err
	}

	slog.DebugContext(logCtx, "Preferences loaded", "file", v.ConfigFileUsed(), "prefs", fmt.Sprintf("%+v", p))

	return p, nil
}

func (p Preferences) Validate() error {
	var errs error

	check := func(ok bool, name string, value any) {
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s = %v", ErrInvalidPreference, name, value))
		}
	}

	check(p.Width > 0, "width", p.Width)
	check(p.Height >= 0, "height", p.Height)
	check(p.LongPressTimeoutMs > 0, "longPressTimeoutMs", p.LongPressTimeoutMs)
	check(p.RepeatStartDelayMs > 0, "repeatStartDelayMs", p.RepeatStartDelayMs)
	check(p.RepeatIntervalMs > 0, "repeatIntervalMs", p.RepeatIntervalMs)
	check(p.SwipeTravel >= 0, "swipeTravel", p.SwipeTravel)
	check(p.SwipeVelocity >= 0, "swipeVelocity", p.SwipeVelocity)
	check(p.DebounceMs >= 0, "debounceMs", p.DebounceMs)
	check(p.MultiTapIntervalMs >= 0, "multiTapIntervalMs", p.MultiTapIntervalMs)
	check(p.ProximityMultiplier >= 0, "proximityMultiplier", p.ProximityMultiplier)
	check(p.PopupColumns >= 0, "popupColumns", p.PopupColumns)
	check(p.Port >= 0 && p.Port < 1<<16, "port", p.Port)

	return errs
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func (p Preferences) Gesture() gesture.Config {
	cfg := gesture.DefaultConfig()
	cfg.LongPressTimeout = ms(p.LongPressTimeoutMs)
	cfg.RepeatStartDelay = ms(p.RepeatStartDelayMs)
	cfg.RepeatInterval = ms(p.RepeatIntervalMs)
	cfg.SwipeEnabled = p.SwipeEnabled
	cfg.SwipeTravel = p.SwipeTravel
	cfg.SwipeVelocity = p.SwipeVelocity
	cfg.DebounceTime = ms(p.DebounceMs)
	cfg.MultiTapInterval = ms(p.MultiTapIntervalMs)
	cfg.PopupsEnabled = p.PopupsEnabled

	return cfg
}

func (p Preferences) KeyboardOptions() keyboard.Options {
	return keyboard.Options{
		ProximityMultiplier: p.ProximityMultiplier,
		LabelUppercase:      p.LabelUppercase,
		HookShiftNum:        p.HookShiftNum,
		HookShiftSymbol:     p.HookShiftSymbol,
	}
}

func (p Preferences) SessionOptions(sched loop.Scheduler, listener gesture.Listener) session.Options {
	return session.Options{
		Width:        p.Width,
		Height:       p.Height,
		Landscape:    p.Landscape,
		Initial:      p.Keyboard,
		Gesture:      p.Gesture(),
		Keyboard:     p.KeyboardOptions(),
		PopupColumns: p.PopupColumns,
		Scheduler:    sched,
		Listener:     listener,
	}
}

// WriteExample writes the defaults as a TOML config file.
func WriteExample(path string) error {
	var buffer bytes.Buffer
	if err := toml.NewEncoder(&buffer).Encode(Defaults()); err != nil {
		return fmt.Errorf("could not encode example config: %w", err)
	}

	if err := os.WriteFile(path, buffer.Bytes(), 0o644); err != nil {
		return fmt.Errorf("could not write example config: %w", err)
	}

	slog.InfoContext(logCtx, "Example config file created", "path", path)

	return nil
}
