package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/tagfolder/cmd"
	"github.com/mattsolo1/tagfolder/cmd/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tagfolder",
		Short: "Browse markdown notes as a tree of their tags",
		Long: `tagfolder arranges the notes of a directory into folders built from
their tags. Nested tags such as proj/alpha become nested folders, and a note
appears under every tag it carries.`,
		SilenceUsage: true,
	}
	config.AddGlobalFlags(rootCmd)
	cobra.OnInitialize(config.InitConfig)

	// Add subcommands
	rootCmd.AddCommand(cmd.NewTreeCmd())
	rootCmd.AddCommand(cmd.NewWatchCmd())
	rootCmd.AddCommand(cmd.NewBrowseCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
