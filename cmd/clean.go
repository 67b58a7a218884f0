package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/config"
	"github.com/volman-dev/volman/internal/docker"
	"github.com/volman-dev/volman/internal/volume"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete all domain data and volumes",
	Long:  "Delete the contents of every domain directory and remove every domain volume",
	Run:   runClean,
}

func runClean(cmd *cobra.Command, args []string) {
	workDir, _ := cmd.Flags().GetString("workdir")

	cfg, err := config.Load(workDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to load config: %v", err)))
		os.Exit(1)
	}
	domains := config.Resolve(cfg)

	dockerClient, err := docker.NewClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] container runtime unavailable: %v", err)))
		os.Exit(1)
	}
	defer dockerClient.Close()

	fmt.Println(titleStyle.Render("==> cleaning domain data"))
	fmt.Println()

	fmt.Println(errorStyle.Render("  [warn] this will permanently delete all domain data and volumes"))
	fmt.Println(errorStyle.Render("  [warn] this action cannot be undone"))
	fmt.Println()

	manager := volume.NewManager(dockerClient, domains, workDir, os.Stdout)

	if err := manager.Clean(context.Background(), confirmPrompt); err != nil {
		fmt.Println()
		fmt.Fprintln(os.Stderr, errorStyle.Render("  [error] clean finished with errors"))
		os.Exit(1)
	}

	fmt.Println()
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
