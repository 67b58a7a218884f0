package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "manage volman configuration",
	Long:  "inspect the resolved volman configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "display current configuration",
	Long:  "show the resolved domain registry and backend settings",
	Run: func(cmd *cobra.Command, args []string) {
		workDir, _ := cmd.Flags().GetString("workdir")

		cfg, err := config.Load(workDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s failed to load config: %v\n", errorStyle.Render("[error]"), err)
			os.Exit(1)
		}
		domains := config.Resolve(cfg)

		fmt.Println()
		fmt.Println(titleStyle.Render("==> volman configuration"))
		fmt.Println()

		fmt.Println("  " + labelStyle.Render("registry:"))
		fmt.Println("    prefix: " + infoStyle.Render(cfg.Registry.Prefix))
		fmt.Println()

		rows := [][]string{}
		for _, d := range domains {
			rows = append(rows, []string{d.Key, d.LocalPath, d.VolumeName})
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == 0 {
					return lipgloss.NewStyle().
						Foreground(lipgloss.Color("86")).
						Bold(true).
						Align(lipgloss.Center)
				}
				return lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
			}).
			Headers("domain", "path", "volume").
			Rows(rows...)

		fmt.Println(t)
		fmt.Println()

		fmt.Println("  " + labelStyle.Render("backend:"))
		if cfg.Backend.Image == "" {
			fmt.Println("    image: " + dimStyle.Render("(not configured)"))
		} else {
			fmt.Println("    image: " + infoStyle.Render(cfg.Backend.Image))
		}
		fmt.Println("    container: " + infoStyle.Render(cfg.Backend.ContainerName))
		fmt.Println("    port: " + infoStyle.Render(fmt.Sprintf("%d->%d", cfg.Backend.HostPort, cfg.Backend.Port)))
		fmt.Println("    mounts: " + infoStyle.Render(cfg.Backend.Mounts))
		fmt.Println("    mount root: " + infoStyle.Render(cfg.Backend.MountRoot))
		fmt.Println("    restart policy: " + infoStyle.Render(cfg.Backend.RestartPolicy))
		fmt.Println()

		fmt.Println("  " + dimStyle.Render("edit volman.toml to change these settings,"))
		fmt.Println("  " + dimStyle.Render("or run 'volman init' to scaffold one."))
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}
