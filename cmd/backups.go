package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/volume"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List backup sets",
	Long:  "List every backup set in the working directory, oldest first",
	Run:   runBackupsList,
}

func runBackupsList(cmd *cobra.Command, args []string) {
	workDir, _ := cmd.Flags().GetString("workdir")

	sets, err := volume.DiscoverBackupSets(workDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to list backups: %v", err)))
		os.Exit(1)
	}

	if len(sets) == 0 {
		fmt.Println(dimStyle.Render("no backups found"))
		fmt.Println()
		fmt.Println(dimStyle.Render("create one with: volman backup"))
		return
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> backups (%d)", len(sets))))
	fmt.Println()

	rows := [][]string{}
	var totalSize int64

	for _, set := range sets {
		totalSize += set.SizeBytes

		rows = append(rows, []string{
			set.ID,
			set.CreatedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", len(set.Archives)),
			units.HumanSize(float64(set.SizeBytes)),
		})
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
		Headers("id", "created", "domains", "size").
		Rows(rows...)

	fmt.Println(t)
	fmt.Println()

	fmt.Println(dimStyle.Render(fmt.Sprintf("  total: %s", units.HumanSize(float64(totalSize)))))
	fmt.Println()

	fmt.Println(dimStyle.Render("  commands:"))
	fmt.Printf("    %s\n", dimStyle.Render("volman restore <id>           # restore a backup set"))
	fmt.Printf("    %s\n", dimStyle.Render("volman backups prune --keep 5 # drop old backup sets"))
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(backupsCmd)
}
