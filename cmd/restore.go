package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/config"
	"github.com/volman-dev/volman/internal/volume"
)

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-id]",
	Short: "Restore domain directories from a backup",
	Long:  "Replace every domain directory with its archive from the named backup set",
	Args:  cobra.ExactArgs(1),
	Run:   runRestore,
}

func runRestore(cmd *cobra.Command, args []string) {
	backupID := strings.TrimSpace(args[0])
	if backupID == "" {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[error] backup id required"))
		os.Exit(1)
	}

	workDir, _ := cmd.Flags().GetString("workdir")

	cfg, err := config.Load(workDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to load config: %v", err)))
		os.Exit(1)
	}
	domains := config.Resolve(cfg)

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> restoring from %s", backupID)))
	fmt.Println()

	manager := volume.NewManager(nil, domains, workDir, os.Stdout)

	if err := manager.Restore(context.Background(), backupID); err != nil {
		fmt.Println()
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("  [error] %v", err)))
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("  [done] restore complete"))
	fmt.Println()
	fmt.Println(dimStyle.Render("  verify with: volman list"))
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
