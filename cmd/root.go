package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true)
)

var rootCmd = &cobra.Command{
	Use:   "volman",
	Short: "volume lifecycle manager for containerized data domains",
	Long: titleStyle.Render(`
              __
 _   ______  / /___ ___  ____ _____
| | / / __ \/ / __ `+"`"+`__ \/ __ `+"`"+`/ __ \
| |/ / /_/ / / / / / / / /_/ / / / /
|___/\____/_/_/ /_/ /_/\__,_/_/ /_/
`) + "\n" + subtitleStyle.Render("volume lifecycle manager") + "\n\n" +
		"Manages the local directories and container volumes behind a data backend:\n" +
		"create, inspect, back up, restore and clean a fixed registry of data domains.",
	Version: "0.1.0",
}

func SetVersionInfo(v, bt, gc string) {
	version = v
	buildTime = bt
	gitCommit = gc
	rootCmd.Version = fmt.Sprintf("%s (built: %s, commit: %s)", version, buildTime, gitCommit)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] Error: %v", err)))
		os.Exit(1)
	}
}

// confirmPrompt asks on stdout and reads one line from stdin. Only "y" and
// "Y" count as yes; everything else, including EOF, declines.
func confirmPrompt(prompt string) bool {
	fmt.Print(prompt)
	var response string
	fmt.Scanln(&response)
	return strings.EqualFold(response, "y")
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringP("workdir", "w", ".", "working directory holding the domain data")
}
