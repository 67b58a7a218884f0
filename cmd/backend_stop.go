package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/backend"
	"github.com/volman-dev/volman/internal/config"
	"github.com/volman-dev/volman/internal/docker"
)

var backendStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the backend container",
	Long:  "Stop and remove the backend container, leaving volumes and data untouched",
	Run:   runBackendStop,
}

func runBackendStop(cmd *cobra.Command, args []string) {
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

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> stopping backend: %s", cfg.Backend.ContainerName)))
	fmt.Println()

	runner := backend.NewRunner(dockerClient, cfg.Backend, domains, workDir, os.Stdout)

	if err := runner.Stop(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("  [error] %v", err)))
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("  domain data and volumes were left untouched."))
	fmt.Println()
}

func init() {
	backendCmd.AddCommand(backendStopCmd)
}
