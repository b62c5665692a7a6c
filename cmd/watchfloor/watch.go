package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/watchfloor/internal/logging"
	"github.com/abelbrown/watchfloor/internal/metrics"
	"github.com/abelbrown/watchfloor/internal/pipeline"
)

func watchCmd(g *globalFlags) *cobra.Command {
	var schedule string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Fetch and assess on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if schedule != "" {
				cfg.Schedule.Cron = schedule
			}
			if cfg.Schedule.Cron == "" {
				return errors.New("watch needs a schedule: set schedule.cron or --schedule")
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			m := metrics.New()
			p, cleanup, err := newPipeline(cfg, st, m)
			if err != nil {
				return err
			}
			defer cleanup()

			sched, err := pipeline.NewScheduler(p, cfg.Schedule.Cron)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.Metrics.Listen != "" {
				srv := serveMetrics(cfg.Metrics.Listen, m)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "watching %d feeds on %q, next run %s\n",
				len(cfg.Feeds), cfg.Schedule.Cron, sched.Next(time.Now()).Format(time.Kitchen))
			sched.Start(ctx)
			logging.Info("watch stopped")
			return nil
		},
	}
	cmd.Flags().StringVarP(&schedule, "schedule", "s", "", "Cron schedule overriding the config")
	return cmd
}

func serveMetrics(addr string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log := logging.WithPrefix("metrics")
	go func() {
		log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
		}
	}()
	return srv
}
