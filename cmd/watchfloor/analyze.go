package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/abelbrown/watchfloor/internal/fetch"
	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/ui/report"
)

type analyzeFlags struct {
	window string
	format string
	width  int
}

func analyzeCmd(g *globalFlags) *cobra.Command {
	f := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Assess a JSON array of articles",
		Long: `Reads a JSON array of articles from a file or stdin and prints one
assessment per article. The input itself forms the duplicate window;
--window adds further recent articles from another JSON file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, g, f, args)
		},
	}
	cmd.Flags().StringVarP(&f.window, "window", "w", "", "JSON file of additional recent articles")
	cmd.Flags().StringVarP(&f.format, "format", "f", "json", "Output format (json, table)")
	cmd.Flags().IntVar(&f.width, "width", 0, "Table width (0 for natural width)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, g *globalFlags, f *analyzeFlags, args []string) error {
	if f.format != "json" && f.format != "table" {
		return fmt.Errorf("unknown format %q", f.format)
	}
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	src := "-"
	if len(args) == 1 {
		src = args[0]
	}
	articles, err := readArticles(src, cmd.InOrStdin())
	if err != nil {
		return err
	}
	window := slices.Clone(articles)
	if f.window != "" {
		extra, err := readArticles(f.window, nil)
		if err != nil {
			return err
		}
		window = append(window, extra...)
	}

	an, err := newAnalyzer(cfg.Engine)
	if err != nil {
		return err
	}
	out, err := an.AnalyzeBatch(context.Background(), articles, window)
	if err != nil {
		return err
	}
	return writeAssessments(cmd.OutOrStdout(), f, articles, out)
}

// readArticles decodes a JSON array from path, or from stdin when path is
// "-". Articles without an id get a deterministic one.
func readArticles(path string, stdin io.Reader) ([]intel.Article, error) {
	var r io.Reader = stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}
	if r == nil {
		return nil, fmt.Errorf("no input")
	}
	var articles []intel.Article
	if err := json.NewDecoder(r).Decode(&articles); err != nil {
		return nil, fmt.Errorf("decode articles from %s: %w", path, err)
	}
	for i := range articles {
		if articles[i].ID == "" {
			articles[i].ID = fetch.ArticleID(articles[i])
		}
	}
	return articles, nil
}

func writeAssessments(w io.Writer, f *analyzeFlags, articles []intel.Article, out []intel.IntelligenceAssessment) error {
	if f.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	rows := make([]report.Row, len(out))
	for i, a := range out {
		rows[i] = report.Row{Assessment: a, Title: articles[i].Title, Source: articles[i].Host()}
	}
	_, err := fmt.Fprintln(w, report.RenderTable(rows, f.width))
	return err
}
