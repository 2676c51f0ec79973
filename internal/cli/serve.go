package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/esachdev28/truth-weaver/internal/model"
	"github.com/esachdev28/truth-weaver/internal/server"
	"github.com/esachdev28/truth-weaver/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the verification pipeline over HTTP:

  GET  /              liveness
  GET  /api/claims    registry snapshot
  POST /api/verify    verify text, a link or an image (form fields)
  POST /api/score     score an ad-hoc claim
  POST /api/explain   explain a verdict
  GET  /api/crisis    crisis detection over the registry
  POST /api/scan      queue a background news scan
  GET  /api/agents    stage counters and recent activity

Example:
  truthweaver serve --addr :8000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	serveCmd.Flags().Int("scan-workers", 0, "background scan workers")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.scan_workers", serveCmd.Flags().Lookup("scan-workers"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	log := logger

	a, err := buildApp(cfg, log, false)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.provider != nil {
		go checkProvider(ctx, a, log)
	}

	pool := worker.NewPool(cfg.Server.ScanWorkers,
		worker.WithQueueSize(cfg.Server.ScanQueue),
		worker.WithLogger(log.Named("scans")),
		worker.WithResultHandler(func(r worker.Result) {
			res, ok := r.(*worker.ScanResult)
			if !ok {
				log.Error("background job failed", zap.Error(r.GetError()))
				return
			}
			if err := res.GetError(); err != nil {
				log.Warn("background scan interrupted", zap.String("source_url", res.SourceURL), zap.Error(err))
				return
			}
			log.Info("background scan complete",
				zap.String("source_url", res.SourceURL),
				zap.String("category", res.Category),
				zap.Int("claims", len(res.Claims)))
		}),
	)
	pool.Start()

	srv := server.New(a.pipeline, pool, cfg.Server, log.Named("http"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), model.Seconds(cfg.Server.ShutdownTimeout))
		defer cancel()
		if err := pool.Shutdown(shutdownCtx); err != nil {
			log.Warn("scan queue not drained", zap.Error(err))
		}
		return nil
	})

	err = g.Wait()
	log.Info("server stopped", zap.Int("claims", a.pipeline.Registry().Len()))
	return err
}

func checkProvider(ctx context.Context, a *app, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if !a.provider.IsAvailable(ctx) {
		log.Warn("text-generation provider unreachable, scores will fall back to UNVERIFIED",
			zap.String("provider", a.provider.Name()))
	}
}
