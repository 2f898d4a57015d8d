package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kgruel/ctxssg/internal/server"
	"github.com/kgruel/ctxssg/internal/site"
	"github.com/kgruel/ctxssg/internal/watch"
)

var (
	servePort   int
	serveWatch  bool
	serveDrafts bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the built site locally",
	Long: `Serve starts a local preview server over the output directory. With
--watch it also rebuilds the site whenever content, templates, static
assets, or the config file change. The server always serves whatever is
currently on disk; a rebuild failure is reported and watching continues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		builder := site.New(afero.NewOsFs(), ".", slog.Default())
		opts := site.Options{IncludeDrafts: serveDrafts}

		// Always start from a fresh build so there is something to serve.
		res := builder.Build(cmd.Context(), opts)
		reportResult(res)

		outputDir := outputDirFor(".")
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			srv := &server.Server{Dir: filepath.Join(".", outputDir), Port: servePort}
			return srv.Run(ctx)
		})
		if serveWatch {
			g.Go(func() error {
				w := &watch.Watcher{
					Root:      ".",
					OutputDir: outputDir,
					Build: func(ctx context.Context) {
						reportResult(builder.Build(ctx, opts))
					},
				}
				return w.Run(ctx)
			})
		}
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", server.DefaultPort, "port to serve on")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "watch for changes and rebuild")
	serveCmd.Flags().BoolVar(&serveDrafts, "drafts", false, "include content marked draft: true")
	rootCmd.AddCommand(serveCmd)
}
