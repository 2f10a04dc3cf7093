package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vidctl/vidctl/filesystem"
	"github.com/vidctl/vidctl/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Should default to the mpv engine with exclusive audio", func() {
			_ = Setup()
			So(viper.GetString(key.PlayerEngine), ShouldEqual, "mpv")
			So(viper.GetBool(key.PlayerMixWithOthers), ShouldBeFalse)
			So(viper.GetFloat64(key.PlayerDefaultVolume), ShouldEqual, 1.0)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("player.mix_with_others")
			So(result, ShouldEqual, "player_mix_with_others")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.PlayerUserAgent]

		Convey("Env should be prefixed with the application name", func() {
			So(field.Env(), ShouldEqual, "VIDCTL_PLAYER_USER_AGENT")
		})

		Convey("MarshalJSON should report the value type", func() {
			_ = Setup()
			data, err := field.MarshalJSON()
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, `"type":"string"`)
			So(string(data), ShouldContainSubstring, `"key":"player.user_agent"`)
		})
	})
}
