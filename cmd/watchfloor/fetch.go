package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/metrics"
	"github.com/abelbrown/watchfloor/internal/pipeline"
)

func fetchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch configured feeds once and assess new articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			p, cleanup, err := newPipeline(cfg, st, metrics.New())
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rep, err := p.Run(ctx)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}
}

func printReport(w io.Writer, rep pipeline.Report) {
	for _, f := range rep.Feeds {
		if f.Err != nil {
			fmt.Fprintf(w, "  %-30s error: %v\n", f.Name, f.Err)
			continue
		}
		fmt.Fprintf(w, "  %-30s %4d fetched %4d new\n", f.Name, f.Fetched, f.New)
	}
	fmt.Fprintf(w, "%d new, %d analyzed, %d published in %s\n",
		rep.New(), rep.Analyzed, rep.Published, rep.Took.Round(time.Millisecond))
	for _, l := range []intel.Level{intel.LevelCritical, intel.LevelHigh, intel.LevelMedium, intel.LevelLow} {
		if n := rep.ByPriority[l]; n > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", l, n)
		}
	}
}
