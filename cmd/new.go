package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kgruel/ctxssg/internal/scaffold"
)

var newPage bool

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a new post or page stub",
	Long: `New writes a dated draft stub under ./content. By default it creates a
post in content/posts; with --page it creates a top-level page instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := scaffold.NewContent(afero.NewOsFs(), ".", args[0], newPage, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		return nil
	},
}

func init() {
	newCmd.Flags().BoolVar(&newPage, "page", false, "create a page instead of a post")
	rootCmd.AddCommand(newCmd)
}
