package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/volman-dev/volman/internal/config"
)

var (
	initFull  bool
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a volman working directory",
	Long:  "Create a volman.toml configuration file in the working directory",
	Run:   runInit,
}

func runInit(cmd *cobra.Command, args []string) {
	workDir, _ := cmd.Flags().GetString("workdir")
	configPath := filepath.Join(workDir, config.FileName)

	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[error] volman.toml already exists"))
		fmt.Println(dimStyle.Render("  pass --force to overwrite it"))
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render("==> initializing volman"))
	fmt.Println()

	fmt.Println(progressStyle.Render("  --> detecting existing data..."))
	existing := 0
	for _, key := range config.DefaultKeys {
		if info, err := os.Stat(filepath.Join(workDir, key)); err == nil && info.IsDir() {
			existing++
		}
	}
	fmt.Printf("    %s %s\n", dimStyle.Render("domains:"), valueStyle.Render(fmt.Sprintf("%d", len(config.DefaultKeys))))
	fmt.Printf("    %s %s\n", dimStyle.Render("directories present:"), valueStyle.Render(fmt.Sprintf("%d", existing)))
	fmt.Println()

	var scaffold string
	if initFull {
		fmt.Println(progressStyle.Render("  --> creating full configuration..."))
		scaffold = generateFullConfig()
	} else {
		fmt.Println(progressStyle.Render("  --> creating minimal configuration..."))
		scaffold = generateMinimalConfig()
	}

	if err := os.WriteFile(configPath, []byte(scaffold), 0644); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] failed to write volman.toml: %v", err)))
		os.Exit(1)
	}

	fmt.Println(successStyle.Render("  [done] volman.toml created"))
	fmt.Println()
	fmt.Println(labelStyle.Render("  next steps:"))
	fmt.Printf("    %s\n", dimStyle.Render("1. review and customize volman.toml"))
	fmt.Printf("    %s\n", dimStyle.Render("2. create directories and volumes with: volman create"))
	fmt.Printf("    %s\n", dimStyle.Render("3. run the backend with: volman backend start"))
	fmt.Println()
}

func generateMinimalConfig() string {
	return `# volman.toml - Minimal configuration

[registry]
prefix = "volman"    # volumes are named <prefix>_<domain>

# domains default to: ` + strings.Join(config.DefaultKeys, ", ") + `
# add [[domains]] entries to override the registry.

[backend]
image = ""           # container image to run, required for 'volman backend start'
port = 8000
host_port = 8000
`
}

func generateFullConfig() string {
	var b strings.Builder

	b.WriteString(`# volman.toml - Full configuration

[registry]
prefix = "volman"              # volumes are named <prefix>_<domain>

# The domain registry, in execution order. Every lifecycle operation walks
# these entries top to bottom. Paths are relative to the working directory.
`)

	for _, key := range config.DefaultKeys {
		fmt.Fprintf(&b, "\n[[domains]]\nkey = %q\npath = %q\nvolume = \"volman_%s\"\n", key, key, key)
	}

	b.WriteString(`
[backend]
image = ""                     # container image to run, required for 'volman backend start'
container_name = "volman-backend"
port = 8000                    # port the backend listens on inside the container
host_port = 8000               # host port to publish
mounts = "bind"                # bind (local dirs) or volume (named volumes)
mount_root = "/app"            # domains mount at <mount_root>/<path>
restart_policy = "unless-stopped"

[backend.env]
# environment variables passed to the backend container
# LOG_LEVEL = "info"
`)

	return b.String()
}

func init() {
	initCmd.Flags().BoolVar(&initFull, "full", false, "Create full configuration with all options")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing volman.toml")
	rootCmd.AddCommand(initCmd)
}
