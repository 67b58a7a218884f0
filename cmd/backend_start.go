package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/backend"
	"github.com/volman-dev/volman/internal/config"
	"github.com/volman-dev/volman/internal/docker"
	"github.com/volman-dev/volman/internal/utils"
	"github.com/volman-dev/volman/internal/volume"
)

var backendStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the backend container",
	Long:  "Create domain directories and volumes, then start the backend container with one mount per domain",
	Run:   runBackendStart,
}

func runBackendStart(cmd *cobra.Command, args []string) {
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

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> starting backend: %s", cfg.Backend.ContainerName)))
	fmt.Println()

	fmt.Println(progressStyle.Render("  --> preparing domains..."))
	manager := volume.NewManager(dockerClient, domains, workDir, os.Stdout)
	if err := manager.Create(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("  [error] failed to prepare domains"))
		os.Exit(1)
	}

	fmt.Println(progressStyle.Render("  --> starting container..."))
	runner := backend.NewRunner(dockerClient, cfg.Backend, domains, workDir, os.Stdout)

	containerID, err := runner.Start(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("  [error] %v", err)))
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("  [done] backend started"))
	fmt.Println()

	fmt.Println(labelStyle.Render("  backend details:"))
	fmt.Printf("    %s %s\n", dimStyle.Render("container:"), valueStyle.Render(cfg.Backend.ContainerName))
	fmt.Printf("    %s %s\n", dimStyle.Render("id:"), dimStyle.Render(utils.TruncateID(containerID, 12)))
	fmt.Printf("    %s %s\n", dimStyle.Render("image:"), valueStyle.Render(cfg.Backend.Image))
	fmt.Printf("    %s %s\n", dimStyle.Render("port:"), valueStyle.Render(fmt.Sprintf("%d->%d", cfg.Backend.HostPort, cfg.Backend.Port)))
	fmt.Printf("    %s %s\n", dimStyle.Render("mounts:"), valueStyle.Render(fmt.Sprintf("%d (%s)", len(domains), cfg.Backend.Mounts)))
	fmt.Println()

	fmt.Println(dimStyle.Render("  quick actions:"))
	fmt.Println(dimStyle.Render("    volman backend logs -f   # follow logs"))
	fmt.Println(dimStyle.Render("    volman backend status    # container details"))
	fmt.Println(dimStyle.Render("    volman backend stop      # stop and remove"))
	fmt.Println()
}

func init() {
	backendCmd.AddCommand(backendStartCmd)
}
