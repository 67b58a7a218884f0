package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/config"
	"github.com/volman-dev/volman/internal/volume"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up all domain directories",
	Long:  "Archive every non-empty domain directory into a timestamped backup set",
	Run:   runBackup,
}

func runBackup(cmd *cobra.Command, args []string) {
	workDir, _ := cmd.Flags().GetString("workdir")

	cfg, err := config.Load(workDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to load config: %v", err)))
		os.Exit(1)
	}
	domains := config.Resolve(cfg)

	fmt.Println(titleStyle.Render("==> creating backup"))
	fmt.Println()

	manager := volume.NewManager(nil, domains, workDir, os.Stdout)

	id, err := manager.Backup(context.Background())
	if err != nil {
		fmt.Println()
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("  [error] backup finished with errors: %v", err)))
		os.Exit(1)
	}

	sets, err := volume.DiscoverBackupSets(workDir)
	if err == nil {
		for _, set := range sets {
			if set.ID != id {
				continue
			}
			fmt.Println()
			fmt.Println(successStyle.Render("  [done] backup created successfully"))
			fmt.Println()
			fmt.Println(labelStyle.Render("  backup details:"))
			fmt.Printf("    %s %s\n", dimStyle.Render("id:"), valueStyle.Render(set.ID))
			fmt.Printf("    %s %s\n", dimStyle.Render("location:"), valueStyle.Render(filepath.Join(workDir, set.ID)))
			fmt.Printf("    %s %s\n", dimStyle.Render("domains:"), valueStyle.Render(fmt.Sprintf("%d", len(set.Archives))))
			fmt.Printf("    %s %s\n", dimStyle.Render("size:"), valueStyle.Render(units.HumanSize(float64(set.SizeBytes))))
		}
	}

	fmt.Println()
	fmt.Println(dimStyle.Render(fmt.Sprintf("  restore with: volman restore %s", id)))
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
