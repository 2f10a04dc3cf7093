package config

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vidctl/vidctl/key"
)

func TestParse(t *testing.T) {
	Convey("Given the player settings", t, func() {
		volume := Default[key.PlayerDefaultVolume]
		speed := Default[key.PlayerDefaultSpeed]

		Convey("Values in range are parsed to the field's type", func() {
			v, err := volume.Parse([]string{"0.25"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 0.25)

			v, err = speed.Parse([]string{"2"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 2.0)
		})

		Convey("Volumes outside [0, 1] are rejected", func() {
			for _, raw := range []string{"-0.1", "1.5"} {
				_, err := volume.Parse([]string{raw})
				So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)
			}
		})

		Convey("Speeds must be positive", func() {
			for _, raw := range []string{"0", "-1", "5"} {
				_, err := speed.Parse([]string{raw})
				So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)
			}
		})

		Convey("Values of the wrong type are rejected", func() {
			_, err := volume.Parse([]string{"loud"})
			So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "float64")

			seek := Default[key.TUISeekStep]
			_, err = seek.Parse([]string{"1.5"})
			So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)
		})
	})

	Convey("Given string settings", t, func() {
		Convey("Only known options are accepted", func() {
			engine := Default[key.PlayerEngine]
			_, err := engine.Parse([]string{"vlc"})
			So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)

			variant := Default[key.IconsVariant]
			_, err = variant.Parse([]string{"nerd"})
			So(err, ShouldBeNil)

			level := Default[key.LogsLevel]
			_, err = level.Parse([]string{"warn"})
			So(err, ShouldBeNil)
			_, err = level.Parse([]string{"chatty"})
			So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)
		})

		Convey("The metrics address is host:port or empty", func() {
			address := Default[key.MetricsAddress]
			for _, raw := range []string{"", ":9090", "127.0.0.1:9090"} {
				_, err := address.Parse([]string{raw})
				So(err, ShouldBeNil)
			}
			for _, raw := range []string{"9090", "localhost:http-alt", ":70000"} {
				_, err := address.Parse([]string{raw})
				So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)
			}
		})

		Convey("User agents must be valid header values", func() {
			agent := Default[key.PlayerUserAgent]
			_, err := agent.Parse([]string{"bad\nagent"})
			So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given the default settings", t, func() {
		So(Setup(), ShouldBeNil)

		Convey("They are all valid", func() {
			So(Validate(), ShouldBeNil)
		})

		Convey("An out of range override is reported for its key only", func() {
			viper.Set(key.PlayerDefaultVolume, 3)
			defer viper.Set(key.PlayerDefaultVolume, 1.0)

			err := Validate(key.PlayerDefaultVolume)
			So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, key.PlayerDefaultVolume)

			So(Validate(key.PlayerDefaultSpeed, "no.such.key"), ShouldBeNil)
		})
	})
}
