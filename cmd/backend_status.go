package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/backend"
	"github.com/volman-dev/volman/internal/config"
	"github.com/volman-dev/volman/internal/docker"
	"github.com/volman-dev/volman/internal/utils"
)

var backendStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend container status",
	Long:  "Display state, image, uptime and mounts of the backend container",
	Run:   runBackendStatus,
}

func runBackendStatus(cmd *cobra.Command, args []string) {
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

	runner := backend.NewRunner(dockerClient, cfg.Backend, domains, workDir, os.Stdout)

	status, err := runner.Status(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] %v", err)))
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> backend: %s", status.Name)))
	fmt.Println()

	if !status.Exists {
		fmt.Println(dimStyle.Render("  container not found."))
		fmt.Println()
		fmt.Printf("  start it with: %s\n", dimStyle.Render("volman backend start"))
		fmt.Println()
		return
	}

	statusColor := "10"
	if !status.Running {
		statusColor = "240"
	}
	statusStyled := lipgloss.NewStyle().Foreground(lipgloss.Color(statusColor)).Render(status.State)

	fmt.Println(labelStyle.Render("  container information:"))
	fmt.Printf("    %s %s\n", dimStyle.Render("id:"), dimStyle.Render(utils.TruncateID(status.ContainerID, 12)))
	fmt.Printf("    %s %s\n", dimStyle.Render("image:"), valueStyle.Render(status.Image))
	fmt.Printf("    %s %s\n", dimStyle.Render("state:"), statusStyled)
	if status.Running && !status.StartedAt.IsZero() {
		uptime := time.Since(status.StartedAt).Round(time.Second)
		fmt.Printf("    %s %s\n", dimStyle.Render("uptime:"), valueStyle.Render(uptime.String()))
	}
	for _, port := range status.Ports {
		fmt.Printf("    %s %s\n", dimStyle.Render("port:"), valueStyle.Render(port))
	}
	fmt.Println()

	if len(status.Mounts) > 0 {
		fmt.Println(labelStyle.Render("  mounts:"))

		rows := [][]string{}
		for _, m := range status.Mounts {
			rows = append(rows, []string{m.Type, m.Source, m.Target})
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
			Headers("type", "source", "target").
			Rows(rows...)

		fmt.Println(t)
		fmt.Println()
	}

	fmt.Println(dimStyle.Render("  quick actions:"))
	fmt.Println(dimStyle.Render("    volman backend logs -f   # follow logs"))
	fmt.Println(dimStyle.Render("    volman backend stop      # stop and remove"))
	fmt.Println()
}

func init() {
	backendCmd.AddCommand(backendStatusCmd)
}
