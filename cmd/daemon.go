package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/runtime"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage container runtime daemon",
	Long:  "Start, stop and inspect the container runtime daemon volman talks to",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the container runtime daemon",
	Long: `Start the container runtime daemon.

With Podman this starts the API service that exposes the Docker-compatible
socket volman connects to. With Docker the daemon is managed externally
(systemd or Docker Desktop) and this command only reports its state.`,
	Run: runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the container runtime daemon",
	Long: `Stop the Podman API service.

Running containers keep running; domain volume operations are unavailable
until the service is started again.`,
	Run: runDaemonStop,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Long:  "Report the detected runtime, its version, socket path and whether the service answers",
	Run:   runDaemonStatus,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}

// detectRuntimeOrExit resolves the installed runtime, printing install
// pointers and exiting when neither docker nor podman is found.
func detectRuntimeOrExit() *runtime.RuntimeInfo {
	info, err := runtime.DetectRuntime()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s no container runtime detected: %v\n", errorStyle.Render("[error]"), err)
		fmt.Println()
		fmt.Println(dimStyle.Render("  volman needs docker or podman:"))
		fmt.Println(dimStyle.Render("    • docker: https://docs.docker.com/get-docker/"))
		fmt.Println(dimStyle.Render("    • podman: https://podman.io/getting-started/installation"))
		os.Exit(1)
	}
	return info
}

func runDaemonStart(cmd *cobra.Command, args []string) {
	fmt.Println(titleStyle.Render("==> starting container runtime daemon"))
	fmt.Println()

	info := detectRuntimeOrExit()
	fmt.Println(infoStyle.Render(fmt.Sprintf("  [info] detected runtime: %s", info.GetRuntimeName())))
	fmt.Println()

	if info.Type == runtime.RuntimeDocker {
		fmt.Println(successStyle.Render("  [done] docker daemon is already running"))
		fmt.Println()
		fmt.Println(dimStyle.Render("  the docker daemon is managed by systemd or docker desktop, not by volman"))
		return
	}

	mgr := runtime.NewDaemonManager(info)

	fmt.Println(progressStyle.Render("  --> starting podman api service..."))
	if err := mgr.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed to start daemon: %v\n", errorStyle.Render("[error]"), err)
		fmt.Println()
		fmt.Println(dimStyle.Render("  troubleshooting:"))
		fmt.Println(dimStyle.Render("    • check the install: podman --version"))
		fmt.Println(dimStyle.Render("    • start the socket yourself: systemctl --user start podman.socket"))
		fmt.Println(dimStyle.Render("    • inspect logs: journalctl --user -u podman.socket"))
		os.Exit(1)
	}

	fmt.Println(successStyle.Render("  [done] podman daemon started"))
	fmt.Println()
	fmt.Printf("    %s %s\n", dimStyle.Render("socket:"), valueStyle.Render(info.SocketPath))
	fmt.Printf("    %s %s\n", dimStyle.Render("version:"), valueStyle.Render(info.Version))
	if info.IsRootless {
		fmt.Printf("    %s %s\n", dimStyle.Render("mode:"), successStyle.Render("rootless"))
	}
	fmt.Println()
	fmt.Println(dimStyle.Render("  next steps:"))
	fmt.Println(dimStyle.Render("    volman doctor   # verify the full setup"))
	fmt.Println(dimStyle.Render("    volman create   # provision domain directories and volumes"))
	fmt.Println()
}

func runDaemonStop(cmd *cobra.Command, args []string) {
	fmt.Println(titleStyle.Render("==> stopping container runtime daemon"))
	fmt.Println()

	info := detectRuntimeOrExit()
	fmt.Println(infoStyle.Render(fmt.Sprintf("  [info] detected runtime: %s", info.GetRuntimeName())))
	fmt.Println()

	if info.Type == runtime.RuntimeDocker {
		fmt.Println(dimStyle.Render("  the docker daemon cannot be stopped via volman"))
		fmt.Println(dimStyle.Render("  use systemctl or docker desktop instead"))
		return
	}

	mgr := runtime.NewDaemonManager(info)

	fmt.Println(progressStyle.Render("  --> stopping podman api service..."))
	if err := mgr.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed to stop daemon: %v\n", errorStyle.Render("[error]"), err)
		os.Exit(1)
	}

	fmt.Println(successStyle.Render("  [done] podman daemon stopped"))
	fmt.Println()
	fmt.Println(dimStyle.Render("  containers keep running, but volume and backend commands need the"))
	fmt.Println(dimStyle.Render("  service back: volman daemon start"))
	fmt.Println()
}

func runDaemonStatus(cmd *cobra.Command, args []string) {
	fmt.Println(titleStyle.Render("==> container runtime status"))
	fmt.Println()

	info := detectRuntimeOrExit()
	mgr := runtime.NewDaemonManager(info)

	status, _ := mgr.Status()
	running := mgr.IsRunning()

	fmt.Println(labelStyle.Render("  runtime:"))
	fmt.Printf("    %s %s\n", dimStyle.Render("type:"), valueStyle.Render(string(info.Type)))
	fmt.Printf("    %s %s\n", dimStyle.Render("version:"), valueStyle.Render(info.Version))
	fmt.Printf("    %s %s\n", dimStyle.Render("socket:"), valueStyle.Render(info.SocketPath))
	if info.Type == runtime.RuntimePodman && info.IsRootless {
		fmt.Printf("    %s %s\n", dimStyle.Render("mode:"), successStyle.Render("rootless"))
	}
	if running {
		fmt.Printf("    %s %s\n", dimStyle.Render("service:"), successStyle.Render("running"))
	} else {
		fmt.Printf("    %s %s\n", dimStyle.Render("service:"), errorStyle.Render("stopped"))
	}
	if status != "" && status != "running" && status != "stopped" {
		fmt.Printf("    %s %s\n", dimStyle.Render("details:"), dimStyle.Render(status))
	}
	fmt.Println()

	if running {
		fmt.Println(successStyle.Render("  [ready] volman can reach the runtime"))
	} else if info.Type == runtime.RuntimePodman {
		fmt.Println(dimStyle.Render("  start the service with: volman daemon start"))
	}
	fmt.Println()
}
