package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kgruel/ctxssg/internal/scaffold"
)

var initTitle string

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a new site",
	Long: `Init creates the starter skeleton for a new site: config.yaml, default
templates, sample content, and a stylesheet.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		if err := scaffold.Init(afero.NewOsFs(), path, initTitle); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized site at %s\n", path)
		fmt.Fprintln(cmd.OutOrStdout(), "Next steps:\n  1. ctxssg build\n  2. ctxssg serve --watch")
		return nil
	},
}

func init() {
	initCmd.Flags().StringVarP(&initTitle, "title", "t", "My Site", "site title")
	rootCmd.AddCommand(initCmd)
}
