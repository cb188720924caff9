package cmd

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/anisan-cli/playerview/constant"
	"github.com/anisan-cli/playerview/icon"
	"github.com/anisan-cli/playerview/key"
	"github.com/anisan-cli/playerview/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkCmd reports whether the media engine can be launched.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that the mpv media engine is installed",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := lookupEngine()
		if err != nil {
			printMissingDependencyError(viper.GetString(key.PlayerMpvPath))
			handleErr(err)
		}

		cmd.Printf("%s mpv found at %s\n", style.Fg(style.SuccessColor)(icon.Get(icon.Success)), path)
	},
}

// lookupEngine resolves the configured mpv executable.
func lookupEngine() (string, error) {
	name := viper.GetString(key.PlayerMpvPath)
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("mpv not found: %w", err)
	}
	return path, nil
}

func printMissingDependencyError(dep string) {
	installCmd := constant.MpvInstallHint(runtime.GOOS)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.ErrorColor).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.ErrorColor).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The media engine '%s' was not found. Set %s or install it.", dep, key.PlayerMpvPath))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
