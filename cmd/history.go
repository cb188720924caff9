package cmd

import (
	"encoding/json"
	"os"

	"github.com/anisan-cli/playerview/color"
	"github.com/anisan-cli/playerview/history"
	"github.com/anisan-cli/playerview/icon"
	"github.com/anisan-cli/playerview/style"
	"github.com/anisan-cli/playerview/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyCmd.Flags().Bool("clear", false, "Delete every history entry")
	historyCmd.Flags().StringP("remove", "r", "", "Delete the entry of one locator")
	historyCmd.Flags().IntP("limit", "n", 0, "Show at most this many entries")
	historyCmd.MarkFlagsMutuallyExclusive("clear", "remove")

	historyCmd.SetOut(os.Stdout)
}

// historyCmd lists what was played, most recent first.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently played media",
	Run: func(cmd *cobra.Command, args []string) {
		store := history.Default()

		if lo.Must(cmd.Flags().GetBool("clear")) {
			handleErr(store.Clear())
			cmd.Printf("%s history cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)))
			return
		}

		if locator := lo.Must(cmd.Flags().GetString("remove")); locator != "" {
			handleErr(store.Remove(locator))
			cmd.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), locator)
			return
		}

		entries, err := store.Entries()
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

		width, _, err := util.TerminalSize()
		if err != nil {
			width = 80
		}

		for _, e := range entries {
			meta := style.Faint(util.Quantify(e.Plays, "play", "plays") + ", " +
				util.Quantify(e.Ends, "end", "ends") + ", " +
				util.FormatClock(e.LastDuration) + ", " +
				e.LastPlayed.Format("2006-01-02 15:04"))

			cmd.Printf("%s %s\n", icon.Get(icon.History), style.Truncate(width-3)(style.Fg(color.Purple)(e.Locator)))
			cmd.Printf("  %s\n", meta)
		}
	},
}
