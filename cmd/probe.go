package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vidctl/vidctl/color"
	"github.com/vidctl/vidctl/source"
	"github.com/vidctl/vidctl/style"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.SetOut(os.Stdout)
	addSourceFlags(probeCmd)
	probeCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
}

var probeCmd = &cobra.Command{
	Use:     "probe [uri]",
	Short:   "Resolve the source type and headers of a media URI",
	Long:    "Resolve a media URI and optional format hint into the descriptor an engine would be built with. Nothing is played.",
	Example: "  vidctl probe https://example.com/live.isml/manifest --hint hls",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		d, err := source.Resolve(sourceRequest(cmd, args[0]))
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(d))
			return
		}

		label := style.Fg(color.Blue)
		cmd.Printf("%s  %s\n", label("URI: "), d.URI)
		cmd.Printf("%s  %s\n", label("Type:"), style.Fg(color.Purple)(d.Type.String()))

		names := lo.Keys(d.Headers)
		slices.Sort(names)
		for _, name := range names {
			cmd.Printf("%s  %s\n", label("Header:"), fmt.Sprintf("%s: %s", name, style.Fg(color.Yellow)(d.Headers[name])))
		}
	},
}
