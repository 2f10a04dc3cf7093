package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vidctl/vidctl/color"
	"github.com/vidctl/vidctl/history"
	"github.com/vidctl/vidctl/icon"
	"github.com/vidctl/vidctl/style"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.SetOut(os.Stdout)
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	historyCmd.Flags().IntP("limit", "n", 0, "Show at most this many entries")

	historyCmd.AddCommand(historyRemoveCmd)
	historyRemoveCmd.SetOut(os.Stdout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List resume positions, most recent first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := history.Recent()
		handleErr(err)

		if limit := lo.Must(cmd.Flags().GetInt("limit")); limit > 0 && limit < len(entries) {
			entries = entries[:limit]
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("No history yet"))
			return
		}

		for _, entry := range entries {
			mark := lo.Ternary(entry.Finished(), icon.Get(icon.Ended), icon.Get(icon.Pause))
			cmd.Printf(
				"%s %s %s\n",
				mark,
				entry,
				style.Faint(fmt.Sprintf("%.0f%% %s", entry.WatchedPercentage, entry.UpdatedAt.Local().Format("2006-01-02 15:04"))),
			)
		}
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:     "remove [uri]",
	Short:   "Forget the resume position of a URI",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(history.Remove(args[0]))
		cmd.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Purple)(args[0]))
	},
}
