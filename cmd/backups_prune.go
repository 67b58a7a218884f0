package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/volume"
)

var (
	pruneKeep  int
	forcePrune bool
)

var backupsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old backup sets",
	Long:  "Delete every backup set except the newest N",
	Run:   runBackupsPrune,
}

func runBackupsPrune(cmd *cobra.Command, args []string) {
	workDir, _ := cmd.Flags().GetString("workdir")

	sets, err := volume.DiscoverBackupSets(workDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to list backups: %v", err)))
		os.Exit(1)
	}

	if len(sets) <= pruneKeep {
		fmt.Println(dimStyle.Render(fmt.Sprintf("nothing to prune, %d backup sets exist", len(sets))))
		fmt.Println()
		return
	}

	toRemove := len(sets) - pruneKeep

	fmt.Println(titleStyle.Render("==> pruning backups"))
	fmt.Println()

	if !forcePrune {
		fmt.Println(errorStyle.Render(fmt.Sprintf("  [warn] this will permanently delete %d backup sets, keeping the newest %d", toRemove, pruneKeep)))
		fmt.Println()
		if !confirmPrompt("  continue? (y/N): ") {
			fmt.Println(dimStyle.Render("\n  prune cancelled."))
			return
		}
		fmt.Println()
	}

	removed, err := volume.PruneBackupSets(workDir, pruneKeep)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("  [error] failed to prune backups: %v", err)))
		os.Exit(1)
	}

	for _, id := range removed {
		fmt.Printf("  [done] removed %s\n", id)
	}

	fmt.Println()
	fmt.Println(successStyle.Render(fmt.Sprintf("  [done] %d backup sets removed, %d kept", len(removed), pruneKeep)))
	fmt.Println()
}

func init() {
	backupsPruneCmd.Flags().IntVar(&pruneKeep, "keep", 5, "number of newest backup sets to keep")
	backupsPruneCmd.Flags().BoolVarP(&forcePrune, "force", "f", false, "skip the confirmation prompt")
	backupsCmd.AddCommand(backupsPruneCmd)
}
