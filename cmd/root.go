// Package cmd implements the command-line interface for otaku.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/otaku-mn/otaku/color"
	"github.com/otaku-mn/otaku/constant"
	"github.com/otaku-mn/otaku/key"
	"github.com/otaku-mn/otaku/log"
	"github.com/otaku-mn/otaku/progress"
	"github.com/otaku-mn/otaku/style"
	"github.com/otaku-mn/otaku/tui"
	"github.com/otaku-mn/otaku/util"
	"github.com/otaku-mn/otaku/where"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")
	rootCmd.Flags().BoolP("continue", "c", false, "Resume the most recent history entry without showing the picker")

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Persist playback progress to the watch history")
	lo.Must0(viper.BindPFlag(key.HistorySaveOnWatch, rootCmd.PersistentFlags().Lookup("write-history")))

	// Clean up stale temporary files on startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point: with no arguments it opens the
// continue-watching picker and resumes the chosen entry.
var rootCmd = &cobra.Command{
	Use:   constant.Otaku,
	Short: "A command-line client for anime playback with resume support",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A command-line client for anime playback with resume support"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		var entry *progress.Entry

		if lo.Must(cmd.Flags().GetBool("continue")) {
			entries := progress.List()
			if len(entries) == 0 {
				handleErr(fmt.Errorf("nothing to continue: history is empty"))
			}
			entry = entries[0]
		} else {
			var err error
			entry, err = tui.Run(&tui.Options{})
			handleErr(err)
		}

		if entry == nil {
			return
		}

		handleErr(resumeEntry(entry))
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n",
			style.Fg(color.Red)("✗"),
			strings.Trim(err.Error(), " \n"),
		)
		os.Exit(1)
	}
}
