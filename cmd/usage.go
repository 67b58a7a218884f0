package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/config"
	"github.com/volman-dev/volman/internal/volume"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show disk usage per domain",
	Long:  "Report disk usage in megabytes for every domain directory that exists",
	Run:   runUsage,
}

func runUsage(cmd *cobra.Command, args []string) {
	workDir, _ := cmd.Flags().GetString("workdir")

	cfg, err := config.Load(workDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to load config: %v", err)))
		os.Exit(1)
	}
	domains := config.Resolve(cfg)

	fmt.Println(titleStyle.Render("==> disk usage"))
	fmt.Println()

	manager := volume.NewManager(nil, domains, workDir, os.Stdout)
	usages, totalMB := manager.Usage(context.Background())

	if len(usages) == 0 {
		fmt.Println(dimStyle.Render("  no domain directories found."))
		fmt.Println()
		fmt.Printf("  create them with: %s\n", dimStyle.Render("volman create"))
		fmt.Println()
		return
	}

	rows := [][]string{}
	for _, usage := range usages {
		rows = append(rows, []string{
			usage.Key,
			usage.Path,
			fmt.Sprintf("%d MB", usage.SizeMB),
		})
	}
	rows = append(rows, []string{"total", "", fmt.Sprintf("%d MB", totalMB)})

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
		Headers("domain", "path", "size").
		Rows(rows...)

	fmt.Println(t)
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(usageCmd)
}
