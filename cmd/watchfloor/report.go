package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/store"
	"github.com/abelbrown/watchfloor/internal/ui/report"
)

type reportFlags struct {
	min   string
	limit int
	plain bool
	width int
}

func reportCmd(g *globalFlags) *cobra.Command {
	f := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Browse stored assessments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			min := intel.Level(strings.ToUpper(f.min))
			if !min.Valid() {
				return fmt.Errorf("unknown priority %q", f.min)
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if f.plain {
				rows, err := loadRows(st, min, f.limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.RenderTable(rows, f.width))
				return nil
			}

			load := func(min intel.Level) tea.Cmd {
				return func() tea.Msg {
					rows, err := loadRows(st, min, f.limit)
					return report.AssessmentsLoaded{Rows: rows, Err: err}
				}
			}
			_, err = tea.NewProgram(report.New(load, min), tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&f.min, "min", "m", "low", "Minimum priority (low, medium, high, critical)")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 200, "Maximum assessments to load")
	cmd.Flags().BoolVar(&f.plain, "plain", false, "Print a static table instead of the browser")
	cmd.Flags().IntVar(&f.width, "width", 0, "Table width for --plain")
	return cmd
}

// loadRows joins assessments with their article titles.
func loadRows(st *store.Store, min intel.Level, limit int) ([]report.Row, error) {
	as, err := st.Assessments(min, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]report.Row, 0, len(as))
	for _, a := range as {
		row := report.Row{Assessment: a}
		art, ok, err := st.Article(a.ArticleID)
		if err != nil {
			return nil, err
		}
		if ok {
			row.Title = art.Title
			row.Source = art.Host()
		}
		rows = append(rows, row)
	}
	return rows, nil
}
