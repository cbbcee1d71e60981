package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/otaku-mn/otaku/color"
	"github.com/otaku-mn/otaku/progress"
	"github.com/otaku-mn/otaku/style"
	"github.com/otaku-mn/otaku/util"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.SetOut(os.Stdout)
}

// historyCmd is the parent command for the continue-watching history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the continue-watching history",
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyListCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
}

// historyListCmd prints the stored entries, most recent first.
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved continue-watching entries",
	Run: func(cmd *cobra.Command, args []string) {
		entries := progress.List()

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			lo.Must0(encoder.Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("history is empty"))
			return
		}

		for _, entry := range entries {
			cmd.Printf("%s %s\n",
				style.Fg(color.Purple)(fmt.Sprintf("%s/%s", entry.AnimeID, entry.EpisodeID)),
				entry,
			)
		}

		cmd.Println()
		cmd.Println(style.Faint(fmt.Sprintf("%d %s", len(entries), util.Quantify(len(entries), "entry", "entries"))))
	},
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
}

// historyRemoveCmd deletes a single entry.
var historyRemoveCmd = &cobra.Command{
	Use:   "remove [anime-id] [episode-id]",
	Short: "Remove a single entry from the history",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(progress.Remove(args[0], args[1]))
		cmd.Printf("%s removed %s/%s\n",
			style.Fg(color.Green)("✓"),
			args[0], args[1],
		)
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
}

// historyClearCmd wipes the history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all entries from the history",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(progress.Clear())
		cmd.Printf("%s cleared history\n", style.Fg(color.Green)("✓"))
	},
}
