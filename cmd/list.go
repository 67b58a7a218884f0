package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/config"
	"github.com/volman-dev/volman/internal/docker"
	"github.com/volman-dev/volman/internal/volume"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List domain status",
	Long:  "Show volume and directory state for every domain in the registry",
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	workDir, _ := cmd.Flags().GetString("workdir")

	cfg, err := config.Load(workDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to load config: %v", err)))
		os.Exit(1)
	}
	domains := config.Resolve(cfg)

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> domains (%d)", len(domains))))
	fmt.Println()

	var rt volume.Runtime
	dockerClient, err := docker.NewClient()
	if err == nil {
		defer dockerClient.Close()
		rt = dockerClient
	}

	manager := volume.NewManager(rt, domains, workDir, os.Stdout)
	statuses := manager.List(context.Background())

	rows := [][]string{}
	for _, status := range statuses {
		mountCell := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("not found")
		if status.VolumeExists {
			mountCell = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Render(status.Mountpoint)
		}

		dirCell := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("missing")
		sizeCell := "-"
		if status.DirExists {
			dirCell = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Render(status.LocalPath)
			sizeCell = units.HumanSize(float64(status.DirSizeBytes))
		}

		rows = append(rows, []string{
			status.Key,
			status.VolumeName,
			mountCell,
			dirCell,
			sizeCell,
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
		Headers("domain", "volume", "mountpoint", "directory", "size").
		Rows(rows...)

	fmt.Println(t)
	fmt.Println()

	fmt.Println(dimStyle.Render("  common commands:"))
	fmt.Printf("    %s\n", dimStyle.Render("volman create   # create missing directories and volumes"))
	fmt.Printf("    %s\n", dimStyle.Render("volman usage    # disk usage per domain"))
	fmt.Printf("    %s\n", dimStyle.Render("volman backup   # snapshot all domains"))
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(listCmd)
}
