package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/config"
	"github.com/volman-dev/volman/internal/docker"
	"github.com/volman-dev/volman/internal/runtime"
	"github.com/volman-dev/volman/internal/volume"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system health and dependencies",
	Long:  "Verify that the container runtime, configuration and working directory are usable",
	Run:   runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) {
	workDir, _ := cmd.Flags().GetString("workdir")

	fmt.Println(titleStyle.Render("==> checking system health"))
	fmt.Println()

	allGood := true

	allGood = checkRuntime() && allGood
	allGood = checkWorkDir(workDir) && allGood
	allGood = checkConfig(workDir) && allGood
	allGood = checkDomains(workDir) && allGood
	allGood = checkBackups(workDir) && allGood
	allGood = checkBackend(workDir) && allGood

	fmt.Println()
	if allGood {
		fmt.Println(successStyle.Render("  [done] all checks passed"))
		fmt.Println()
		fmt.Println(dimStyle.Render("  your volman installation is healthy and ready to use"))
	} else {
		fmt.Println(errorStyle.Render("  [error] some checks failed"))
		fmt.Println()
		fmt.Println(dimStyle.Render("  fix the issues above before managing domain data"))
		os.Exit(1)
	}
}

func checkRuntime() bool {
	fmt.Println(labelStyle.Render("  runtime"))

	info, err := runtime.DetectRuntime()

	if err != nil {
		fmt.Printf("    %s runtime not detected\n", errorStyle.Render("[✗]"))
		fmt.Printf("      %s\n", dimStyle.Render(err.Error()))
		fmt.Printf("      %s\n", dimStyle.Render("install docker or podman to continue"))
		return false
	}

	fmt.Printf("    %s %s detected\n", successStyle.Render("[✓]"), valueStyle.Render(string(info.Type)))
	fmt.Printf("      %s %s\n", dimStyle.Render("version:"), dimStyle.Render(info.Version))
	fmt.Printf("      %s %s\n", dimStyle.Render("socket:"), dimStyle.Render(info.SocketPath))

	dockerClient, err := docker.NewClient()
	if err != nil {
		fmt.Printf("    %s runtime daemon not responding\n", errorStyle.Render("[✗]"))
		fmt.Printf("      %s\n", dimStyle.Render(err.Error()))
		return false
	}
	defer dockerClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = dockerClient.GetClient().Ping(ctx)
	if err != nil {
		fmt.Printf("    %s runtime daemon not responding\n", errorStyle.Render("[✗]"))
		fmt.Printf("      %s\n", dimStyle.Render(err.Error()))
		return false
	}

	rt := dockerClient.GetRuntimeInfo()
	fmt.Printf("    %s daemon running via %s\n", successStyle.Render("[✓]"), dimStyle.Render(rt.GetSocketURI()))
	fmt.Println()

	return true
}

func checkWorkDir(workDir string) bool {
	fmt.Println(labelStyle.Render("  working directory"))

	abs, err := filepath.Abs(workDir)
	if err != nil {
		fmt.Printf("    %s cannot resolve working directory\n", errorStyle.Render("[✗]"))
		return false
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		fmt.Printf("    %s %s is not a directory\n", errorStyle.Render("[✗]"), dimStyle.Render(abs))
		return false
	}

	fmt.Printf("    %s %s exists\n", successStyle.Render("[✓]"), dimStyle.Render(abs))

	probe, err := os.CreateTemp(abs, ".volman-doctor-*")
	if err != nil {
		fmt.Printf("    %s not writable\n", errorStyle.Render("[✗]"))
		fmt.Printf("      %s\n", dimStyle.Render(err.Error()))
		return false
	}
	probe.Close()
	os.Remove(probe.Name())

	fmt.Printf("    %s writable\n", successStyle.Render("[✓]"))
	fmt.Println()

	return true
}

func checkConfig(workDir string) bool {
	fmt.Println(labelStyle.Render("  configuration"))

	configPath := filepath.Join(workDir, config.FileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("    %s %s missing\n", errorStyle.Render("[!]"), dimStyle.Render(config.FileName))
		fmt.Printf("      %s\n", dimStyle.Render("built-in defaults apply, run 'volman init' to customize"))
	}

	cfg, err := config.Load(workDir)
	if err != nil {
		fmt.Printf("    %s %s invalid\n", errorStyle.Render("[✗]"), dimStyle.Render(config.FileName))
		fmt.Printf("      %s\n", dimStyle.Render(err.Error()))
		fmt.Println()
		return false
	}

	fmt.Printf("    %s registry valid (%d domains, prefix %s)\n",
		successStyle.Render("[✓]"), len(cfg.Domains), valueStyle.Render(cfg.Registry.Prefix))
	fmt.Println()

	return true
}

func checkDomains(workDir string) bool {
	fmt.Println(labelStyle.Render("  domains"))

	cfg, err := config.Load(workDir)
	if err != nil {
		fmt.Printf("    %s cannot resolve registry\n", errorStyle.Render("[✗]"))
		fmt.Println()
		return false
	}

	missing := 0
	for _, d := range config.Resolve(cfg) {
		path := filepath.Join(workDir, d.LocalPath)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			fmt.Printf("    %s %s\n", successStyle.Render("[✓]"), valueStyle.Render(d.Key))
		} else {
			fmt.Printf("    %s %s (directory missing)\n", errorStyle.Render("[!]"), valueStyle.Render(d.Key))
			missing++
		}
	}

	if missing > 0 {
		fmt.Printf("      %s\n", dimStyle.Render("create missing directories with: volman create"))
	}

	fmt.Println()
	return true
}

func checkBackups(workDir string) bool {
	fmt.Println(labelStyle.Render("  backups"))

	sets, err := volume.DiscoverBackupSets(workDir)
	if err != nil {
		fmt.Printf("    %s cannot scan backup sets\n", errorStyle.Render("[✗]"))
		fmt.Printf("      %s\n", dimStyle.Render(err.Error()))
		fmt.Println()
		return false
	}

	if len(sets) == 0 {
		fmt.Printf("    %s no backup sets\n", errorStyle.Render("[!]"))
		fmt.Printf("      %s\n", dimStyle.Render("create one with: volman backup"))
		fmt.Println()
		return true
	}

	withMetadata := 0
	for _, set := range sets {
		if set.Metadata != nil {
			withMetadata++
		}
	}

	fmt.Printf("    %s %d backup sets discoverable\n", successStyle.Render("[✓]"), len(sets))
	if withMetadata < len(sets) {
		fmt.Printf("    %s %d sets lack metadata.json\n", errorStyle.Render("[!]"), len(sets)-withMetadata)
		fmt.Printf("      %s\n", dimStyle.Render("restore still works, listings fall back to directory names"))
	}
	fmt.Println()

	return true
}

func checkBackend(workDir string) bool {
	fmt.Println(labelStyle.Render("  backend"))

	cfg, err := config.Load(workDir)
	if err != nil {
		fmt.Printf("    %s cannot resolve configuration\n", errorStyle.Render("[✗]"))
		fmt.Println()
		return false
	}

	if cfg.Backend.Image == "" {
		fmt.Printf("    %s no backend image configured\n", errorStyle.Render("[!]"))
		fmt.Printf("      %s\n", dimStyle.Render("set image under [backend] in volman.toml to use 'volman backend start'"))
		fmt.Println()
		return true
	}

	dockerClient, err := docker.NewClient()
	if err != nil {
		fmt.Printf("    %s cannot check backend container\n", errorStyle.Render("[✗]"))
		fmt.Println()
		return false
	}
	defer dockerClient.Close()

	cont, err := dockerClient.FindContainerByName(cfg.Backend.ContainerName)
	if err != nil {
		fmt.Printf("    %s cannot list containers\n", errorStyle.Render("[✗]"))
		fmt.Println()
		return false
	}

	if cont == nil {
		fmt.Printf("    %s container not running\n", errorStyle.Render("[!]"))
		fmt.Printf("      %s\n", dimStyle.Render("start it with: volman backend start"))
	} else if cont.State == "running" {
		fmt.Printf("    %s %s running\n", successStyle.Render("[✓]"), valueStyle.Render(cfg.Backend.ContainerName))
		fmt.Printf("      %s %s\n", dimStyle.Render("image:"), dimStyle.Render(cont.Image))
	} else {
		fmt.Printf("    %s %s stopped (state: %s)\n", errorStyle.Render("[!]"), valueStyle.Render(cfg.Backend.ContainerName), cont.State)
		fmt.Printf("      %s\n", dimStyle.Render("restart it with: volman backend start"))
	}

	fmt.Println()
	return true
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
