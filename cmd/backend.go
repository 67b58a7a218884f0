package cmd

import (
	"github.com/spf13/cobra"
)

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Backend container commands",
	Long:  "Run and manage the backend container that mounts the domain directories",
}

func init() {
	rootCmd.AddCommand(backendCmd)
}
