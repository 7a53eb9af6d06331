/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ttkb-oss/psy-k/pkg/config"
)

var cfg = config.DefaultConfig()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "psyk [file]",
	Short: "Inspect, extract, and create PSY-Q LIB and OBJ files",
	Long: `psyk works with the object modules and libraries produced by the
PSY-Q toolchains for the PlayStation, Saturn, and Genesis.

Called with just a file it prints the file's contents, the same as
the list command.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = config.GetDefaultConfigPath()
			if !config.ConfigExists(path) {
				return nil
			}
		}
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("a LIB or OBJ file is required")
		}
		return list(cmd, args[0], cfg.Listing.DumpCode, cfg.Listing.ShowDebug)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a psyk config file")
}
