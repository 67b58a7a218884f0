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

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create domain directories and volumes",
	Long:  "Create the local directory and the container volume for every domain in the registry",
	Run:   runCreate,
}

func runCreate(cmd *cobra.Command, args []string) {
	workDir, _ := cmd.Flags().GetString("workdir")

	cfg, err := config.Load(workDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to load config: %v", err)))
		os.Exit(1)
	}
	domains := config.Resolve(cfg)

	fmt.Println(titleStyle.Render("==> creating domain directories and volumes"))
	fmt.Println()

	var rt volume.Runtime
	dockerClient, err := docker.NewClient()
	if err != nil {
		fmt.Printf("  [warn] container runtime unavailable: %v\n", err)
	} else {
		defer dockerClient.Close()
		rt = dockerClient
	}

	manager := volume.NewManager(rt, domains, workDir, os.Stdout)

	if err := manager.Create(context.Background()); err != nil {
		fmt.Println()
		fmt.Fprintln(os.Stderr, errorStyle.Render("  [error] create finished with errors"))
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(successStyle.Render(fmt.Sprintf("  [done] %d domains ready", len(domains))))
	fmt.Println()

	fmt.Println(dimStyle.Render("  next steps:"))
	fmt.Println(dimStyle.Render("    volman list           # inspect domain status"))
	fmt.Println(dimStyle.Render("    volman backend start  # run the backend with mounts"))
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(createCmd)
}
