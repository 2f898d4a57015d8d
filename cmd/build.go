package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kgruel/ctxssg/internal/config"
	"github.com/kgruel/ctxssg/internal/site"
	"github.com/kgruel/ctxssg/internal/watch"
)

var (
	buildWatch       bool
	buildDrafts      bool
	buildFormats     []string
	buildConcurrency int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the static site",
	Long: `Build processes Markdown files from ./content, renders them through the
layouts in ./templates, copies ./static, and writes the site to the
configured output directory (default ./_site). Per-file problems are
reported and skipped; the rest of the site still builds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		builder := site.New(afero.NewOsFs(), ".", slog.Default())
		opts := site.Options{
			IncludeDrafts: buildDrafts,
			Formats:       buildFormats,
			Concurrency:   buildConcurrency,
		}

		res := builder.Build(cmd.Context(), opts)
		reportResult(res)
		if !buildWatch {
			if !res.Success {
				return fmt.Errorf("build failed")
			}
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		w := &watch.Watcher{
			Root:      ".",
			OutputDir: outputDirFor("."),
			Build: func(ctx context.Context) {
				reportResult(builder.Build(ctx, opts))
			},
		}
		slog.Info("watching for changes (ctrl-c to stop)")
		return w.Run(ctx)
	},
}

func reportResult(res *site.Result) {
	for _, err := range res.Errors {
		slog.Warn(err.Error())
	}
	slog.Info(res.Summary())
}

// outputDirFor reads the configured output directory so the watcher can
// ignore it; a broken config falls back to the default and is reported by
// the build itself.
func outputDirFor(root string) string {
	cfg, err := config.Load(afero.NewOsFs(), root)
	if err != nil {
		return config.DefaultOutputDir
	}
	return cfg.OutputDir
}

func init() {
	buildCmd.Flags().BoolVarP(&buildWatch, "watch", "w", false, "watch for changes and rebuild")
	buildCmd.Flags().BoolVar(&buildDrafts, "drafts", false, "include content marked draft: true")
	buildCmd.Flags().StringSliceVarP(&buildFormats, "formats", "f", nil, "output formats (html, plain, xml, json); overrides config")
	buildCmd.Flags().IntVar(&buildConcurrency, "concurrency", 0, "parallel conversion limit (default: number of CPUs)")
	rootCmd.AddCommand(buildCmd)
}
