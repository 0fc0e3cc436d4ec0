package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "article",
	Short: "versioned article management tool",
	Example: `article create -t <title> -a <actor>
article save -d <row-id> -n <number> -t <title> -c <body> -a <actor>
article lookup -p <path>
article list
article trash -n <number> -a <actor>
article restore -n <number> -a <actor>
article status -n <number> -s <status> -a <actor>
article swap-home -n <number> -a <actor>
article invalidate -f <filter>
article purge --retention 720h`,
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
	rootCmd.AddCommand(dbCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
