package main

import (
	"fmt"
	"os"

	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tagameal",
	Short: "Tag-a-Meal recipe sharing backend",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			os.Setenv("CONFIG_PATH", path)
		}
		utils.LoadConfig()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to config.yaml (default ./config.yaml or $CONFIG_PATH)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}
