package runtime

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// DaemonManager starts and stops the podman API service. Docker's daemon
// is managed by systemd or Docker Desktop, never by volman.
type DaemonManager struct {
	runtime *RuntimeInfo
}

func NewDaemonManager(runtime *RuntimeInfo) *DaemonManager {
	return &DaemonManager{
		runtime: runtime,
	}
}

func (dm *DaemonManager) Start() error {
	if dm.runtime.Type == RuntimeDocker {
		return fmt.Errorf("docker daemon management not supported - use systemctl or docker desktop")
	}

	return dm.startPodman()
}

func (dm *DaemonManager) Stop() error {
	if dm.runtime.Type == RuntimeDocker {
		return fmt.Errorf("docker daemon management not supported - use systemctl or docker desktop")
	}

	return dm.stopPodman()
}

func (dm *DaemonManager) IsRunning() bool {
	if _, err := os.Stat(dm.runtime.SocketPath); err != nil {
		return false
	}

	cmd := exec.Command(string(dm.runtime.Type), "info")
	return cmd.Run() == nil
}

func (dm *DaemonManager) Status() (string, error) {
	if dm.runtime.Type == RuntimeDocker {
		cmd := exec.Command("docker", "info", "--format", "{{.ServerVersion}}")
		if output, err := cmd.Output(); err == nil {
			return fmt.Sprintf("running (version %s)", strings.TrimSpace(string(output))), nil
		}
		return "stopped or unavailable", nil
	}

	if dm.IsRunning() {
		if dm.hasSystemd() {
			cmd := exec.Command("systemctl", "--user", "status", "podman.socket", "--no-pager")
			if output, err := cmd.Output(); err == nil {
				for _, line := range strings.Split(string(output), "\n") {
					if strings.Contains(line, "Active:") {
						return strings.TrimSpace(line), nil
					}
				}
			}
		}
		return "running", nil
	}
	return "stopped", nil
}

func (dm *DaemonManager) startPodman() error {
	if dm.IsRunning() {
		return fmt.Errorf("podman service is already running")
	}

	socketDir := filepath.Dir(dm.runtime.SocketPath)
	if err := os.MkdirAll(socketDir, 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	if dm.hasSystemd() {
		return dm.startPodmanSystemd()
	}

	return dm.startPodmanManual()
}

func (dm *DaemonManager) stopPodman() error {
	if !dm.IsRunning() {
		return fmt.Errorf("podman service is not running")
	}

	if dm.hasSystemd() {
		cmd := exec.Command("systemctl", "--user", "stop", "podman.socket", "podman.service")
		if output, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("failed to stop podman via systemd: %w\noutput: %s", err, string(output))
		}
		return nil
	}

	return dm.stopPodmanManual()
}

func (dm *DaemonManager) startPodmanSystemd() error {
	cmd := exec.Command("systemctl", "--user", "enable", "--now", "podman.socket")
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to start podman.socket via systemd: %w\noutput: %s", err, string(output))
	}

	for i := 0; i < 10; i++ {
		if _, err := os.Stat(dm.runtime.SocketPath); err == nil {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}

	return fmt.Errorf("podman socket did not become available after starting service")
}

func (dm *DaemonManager) startPodmanManual() error {
	cmd := exec.Command("podman", "system", "service", "--time=0", fmt.Sprintf("unix://%s", dm.runtime.SocketPath))

	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start podman service: %w", err)
	}

	pidFile := dm.pidFilePath()
	if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", cmd.Process.Pid)), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	for i := 0; i < 20; i++ {
		if _, err := os.Stat(dm.runtime.SocketPath); err == nil {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}

	return fmt.Errorf("podman socket did not become available after starting service")
}

func (dm *DaemonManager) stopPodmanManual() error {
	pidFile := dm.pidFilePath()

	data, err := os.ReadFile(pidFile)
	if err != nil {
		cmd := exec.Command("pkill", "-f", "podman system service")
		_ = cmd.Run()
		return nil
	}

	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return fmt.Errorf("invalid PID file: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		_ = os.Remove(pidFile)
		return nil
	}

	time.Sleep(2 * time.Second)

	_ = process.Signal(syscall.SIGKILL)

	_ = os.Remove(pidFile)

	return nil
}

func (dm *DaemonManager) pidFilePath() string {
	return filepath.Join(os.TempDir(), "volman-podman-service.pid")
}

func (dm *DaemonManager) hasSystemd() bool {
	_, err := exec.LookPath("systemctl")
	return err == nil
}
