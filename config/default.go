// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vidctl/vidctl/color"
	"github.com/vidctl/vidctl/constant"
	"github.com/vidctl/vidctl/icon"
	"github.com/vidctl/vidctl/key"
	"github.com/vidctl/vidctl/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string

	check Check
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Vidctl + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string, check ...Check) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		if len(check) > 0 {
			f.check = check[0]
		}
		if err := f.Validate(v); err != nil {
			panic(err)
		}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlayerEngine, "mpv", "Playback engine used to decode and render media.\nAvailable options are: mpv", oneOf("mpv"))
	register(key.PlayerMPVPath, "mpv", "Path to the mpv executable", notBlank)
	register(key.PlayerMixWithOthers, false, "Mix audio with other applications instead of requesting exclusive output")
	register(key.PlayerUserAgent, constant.UserAgent, "User-Agent sent to media servers when none is given in the request headers", headerValue)
	register(key.PlayerDefaultVolume, 1.0, "Volume applied to new sessions. From 0 to 1", between(0, 1))
	register(key.PlayerDefaultSpeed, 1.0, "Playback speed applied to new sessions. Greater than 0, at most 4", positive(4))
	register(key.PlayerLooping, false, "Repeat media indefinitely")
	register(key.PlayerResume, true, "Resume playback from the last known position of a previously played URI")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, kaomoji, squares, nerd (nerd-font required)", oneOf(icon.AvailableVariants()...))
	register(key.TUISeekStep, 10, "Seconds to seek forward or backward per key press", positive(600))
	register(key.TUIVolumeStep, 0.05, "Volume change per key press. From 0 to 1", positive(1))
	register(key.TUIRefreshRate, 250, "Milliseconds between position refreshes of the playback view", positive(10_000))
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace", logLevel)
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Check for a newer release when showing help or version information")
	register(key.MetricsAddress, "", "Address to expose Prometheus metrics on while playing (e.g. :9090).\nDisabled when empty", listenAddress)
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			if value == "" {
				return style.Faint(`""`)
			}
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
