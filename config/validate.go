package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/net/http/httpguts"
)

// ErrInvalidValue is returned when a value does not fit its key.
var ErrInvalidValue = errors.New("invalid value")

// Check reports whether a typed value is acceptable for a field.
type Check func(v any) error

// Validate runs the field's check against v, which must already have the field's type.
func (f *Field) Validate(v any) error {
	if f.check == nil {
		return nil
	}

	if err := f.check(v); err != nil {
		return fmt.Errorf("%w for %s: %w", ErrInvalidValue, f.Key, err)
	}

	return nil
}

// Parse converts raw command line values into the type of the field's default and validates the result.
func (f *Field) Parse(raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w for %s: empty", ErrInvalidValue, f.Key)
	}

	var (
		v   any
		err error
	)

	switch f.Value.(type) {
	case string:
		v = raw[0]
	case int:
		v, err = strconv.Atoi(raw[0])
	case float64:
		v, err = strconv.ParseFloat(raw[0], 64)
	case bool:
		v, err = strconv.ParseBool(raw[0])
	case []string:
		v = raw
	default:
		return nil, fmt.Errorf("%w for %s: unsupported type %T", ErrInvalidValue, f.Key, f.Value)
	}

	if err != nil {
		return nil, fmt.Errorf("%w for %s: expected %s, got %q", ErrInvalidValue, f.Key, f.typeName(), raw[0])
	}

	return v, f.Validate(v)
}

// Current returns the field's effective value, typed like its default.
func (f *Field) Current() any {
	switch f.Value.(type) {
	case int:
		return viper.GetInt(f.Key)
	case float64:
		return viper.GetFloat64(f.Key)
	case bool:
		return viper.GetBool(f.Key)
	case string:
		return viper.GetString(f.Key)
	case []string:
		return viper.GetStringSlice(f.Key)
	default:
		return viper.Get(f.Key)
	}
}

// Validate checks the effective values of the given keys, or of every key when none are given.
// Unknown keys are ignored.
func Validate(keys ...string) error {
	if len(keys) == 0 {
		keys = lo.Keys(Default)
	}

	var errs []error
	for _, k := range keys {
		f, ok := Default[k]
		if !ok {
			continue
		}

		errs = append(errs, f.Validate(f.Current()))
	}

	return errors.Join(errs...)
}

// Write persists the in-memory configuration, creating the file if needed.
func Write() error {
	switch err := viper.WriteConfig(); err.(type) {
	case viper.ConfigFileNotFoundError:
		return viper.SafeWriteConfig()
	default:
		return err
	}
}

func number(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

// between accepts numbers in [low, high].
func between(low, high float64) Check {
	return func(v any) error {
		if n := number(v); n < low || n > high {
			return fmt.Errorf("%v is outside [%v, %v]", v, low, high)
		}
		return nil
	}
}

// positive accepts numbers in (0, high].
func positive(high float64) Check {
	return func(v any) error {
		if n := number(v); n <= 0 || n > high {
			return fmt.Errorf("%v is outside (0, %v]", v, high)
		}
		return nil
	}
}

func oneOf(options ...string) Check {
	return func(v any) error {
		if s, _ := v.(string); !lo.Contains(options, s) {
			return fmt.Errorf("%q is not one of %s", s, strings.Join(options, ", "))
		}
		return nil
	}
}

func notBlank(v any) error {
	if s, _ := v.(string); strings.TrimSpace(s) == "" {
		return errors.New("must not be empty")
	}
	return nil
}

func headerValue(v any) error {
	s, _ := v.(string)
	if s == "" || !httpguts.ValidHeaderFieldValue(s) {
		return fmt.Errorf("%q is not a valid header value", s)
	}
	return nil
}

// listenAddress accepts host:port or an empty string.
func listenAddress(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}

	if _, port, err := net.SplitHostPort(s); err != nil {
		return err
	} else if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return fmt.Errorf("port %q: %w", port, err)
	}
	return nil
}

func logLevel(v any) error {
	s, _ := v.(string)
	_, err := logrus.ParseLevel(s)
	return err
}
