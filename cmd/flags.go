package cmd

import (
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vidctl/vidctl/key"
	"github.com/vidctl/vidctl/source"
)

// addSourceFlags registers the flags describing a media source.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("hint", "", "Format hint overriding type inference")
	lo.Must0(cmd.RegisterFlagCompletionFunc("hint", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return source.Hints(), cobra.ShellCompDirectiveNoFileComp
	}))
	cmd.Flags().StringToStringP("header", "H", map[string]string{}, "HTTP header sent with media requests (Name=value)")
	cmd.Flags().String("user-agent", "", "User-Agent sent when no header sets one")
}

// sourceRequest builds a resolution request from the flags of addSourceFlags.
func sourceRequest(cmd *cobra.Command, uri string) source.Request {
	return source.Request{
		URI:       uri,
		Hint:      mo.EmptyableToOption(lo.Must(cmd.Flags().GetString("hint"))),
		Headers:   lo.Must(cmd.Flags().GetStringToString("header")),
		UserAgent: lo.CoalesceOrEmpty(lo.Must(cmd.Flags().GetString("user-agent")), viper.GetString(key.PlayerUserAgent)),
	}
}
