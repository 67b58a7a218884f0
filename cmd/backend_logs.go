package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/docker/docker/pkg/stdcopy"
	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/backend"
	"github.com/volman-dev/volman/internal/config"
	"github.com/volman-dev/volman/internal/docker"
)

var followBackendLogs bool

var backendLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Stream backend logs",
	Long:  "Stream logs from the backend container",
	Run:   runBackendLogs,
}

func runBackendLogs(cmd *cobra.Command, args []string) {
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

	logs, err := runner.Logs(context.Background(), followBackendLogs)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to get logs: %v", err)))
		os.Exit(1)
	}
	defer logs.Close()

	fmt.Println(titleStyle.Render(fmt.Sprintf("==> logs: %s", cfg.Backend.ContainerName)))
	fmt.Println()

	stdoutPipe, stdoutWriter := io.Pipe()
	stderrPipe, stderrWriter := io.Pipe()

	go func() {
		defer stdoutWriter.Close()
		defer stderrWriter.Close()
		_, err := stdcopy.StdCopy(stdoutWriter, stderrWriter, logs)
		if err != nil && err != io.EOF {
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] error demultiplexing logs: %v", err)))
		}
	}()

	go func() {
		scanner := bufio.NewScanner(stdoutPipe)
		for scanner.Scan() {
			fmt.Println(scanner.Text())
		}
	}()

	scanner := bufio.NewScanner(stderrPipe)
	for scanner.Scan() {
		fmt.Println(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] error reading logs: %v", err)))
		os.Exit(1)
	}
}

func init() {
	backendLogsCmd.Flags().BoolVarP(&followBackendLogs, "follow", "f", false, "Follow log output")
	backendCmd.AddCommand(backendLogsCmd)
}
