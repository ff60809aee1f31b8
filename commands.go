package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/api"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/scheduler"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin API, job runner and scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return serve(a)
		},
	}
}

func newCrawlCommand() *cobra.Command {
	var linksFile string
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Collect fresh links and crawl them once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if linksFile != "" {
				data, err := os.ReadFile(linksFile)
				if err != nil {
					return fmt.Errorf("failed to read links file: %w", err)
				}
				report, err := a.crawler.CrawlFromJSON(ctx, data)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "processed=%d failed=%d skipped=%d\n", report.Processed, report.Failed, report.Skipped)
				return nil
			}

			report, err := a.runner.CollectAndCrawl(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed=%d failed=%d skipped=%d\n", report.Processed, report.Failed, report.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&linksFile, "links", "", `crawl the links of a JSON envelope file ({"items":[{"link":"..."}]}) instead of collecting`)
	return cmd
}

func newEnrichCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Summarise every article that has no summary yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, err := a.runner.Enrich(ctx)
			if err != nil {
				return err
			}
			for _, f := range report.Failures {
				a.log.Warn("Article not enriched", logger.Uint("article_id", f.ArticleID), logger.Err(f.Err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "selected=%d enriched=%d skipped=%d failed=%d interrupted=%t\n",
				report.Selected, report.Enriched, report.Skipped, report.Failed(), report.Interrupted)
			return nil
		},
	}
}

// serve runs the HTTP server, runner and scheduler until SIGINT or SIGTERM
func serve(a *app) error {
	log := a.log
	if a.cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set to serve the admin API")
	}

	if err := a.runner.Start(); err != nil {
		return fmt.Errorf("failed to start pipeline runner: %w", err)
	}

	var sched *scheduler.Scheduler
	if a.cfg.Scheduler.Enabled {
		var err error
		sched, err = scheduler.New(a.runner, log.With(logger.String("stage", "scheduler")), scheduler.Config{
			CrawlSpecs:   a.cfg.Scheduler.CrawlSpecs,
			EnrichSpec:   a.cfg.Scheduler.EnrichSpec,
			StartupDelay: a.cfg.Scheduler.StartupDelay,
			Location:     a.cfg.Location(),
		})
		if err != nil {
			_ = a.runner.Stop()
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		sched.Start()
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Deps{DB: a.db, Runner: a.runner, Auth: a.cfg.Auth, Log: log.With(logger.String("stage", "api"))})

	srv := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", logger.String("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var runErr error
	select {
	case <-quit:
		log.Info("Shutting down server")
	case runErr = <-serverErr:
		log.Error("Server failed", logger.Err(runErr))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			log.Warn("Scheduler did not stop in time", logger.Err(err))
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("Server forced to shutdown", logger.Err(err))
	}
	if err := a.runner.Stop(); err != nil {
		log.Warn("Failed to stop pipeline runner", logger.Err(err))
	}

	log.Info("Server exited")
	return runErr
}
