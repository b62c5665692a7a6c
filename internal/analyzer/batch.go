package analyzer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/logging"
)

// AnalyzeBatch analyzes articles in parallel against one immutable snapshot
// of window and returns assessments in input order. A failed, timed out or
// cancelled article gets a fallback assessment; the batch itself only
// reports the context's error.
func (an *Analyzer) AnalyzeBatch(ctx context.Context, articles []intel.Article, window []intel.Article) ([]intel.IntelligenceAssessment, error) {
	snapshot := append([]intel.Article(nil), window...)
	out := make([]intel.IntelligenceAssessment, len(articles))
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(an.concurrency)
	for i, a := range articles {
		g.Go(func() error {
			out[i] = an.analyzeWithin(ctx, a, snapshot)
			return nil // per-article failures become fallbacks
		})
	}
	_ = g.Wait()

	fallbacks := 0
	for _, as := range out {
		if as.HasTag(intel.TagUnprocessed) {
			fallbacks++
		}
	}
	logging.Debug("batch analyzed", "articles", len(articles), "window", len(snapshot),
		"fallbacks", fallbacks, "elapsed", time.Since(start))
	return out, ctx.Err()
}

// analyzeWithin bounds one analysis by the per-article timeout. The engine
// has no internal cancellation points, so an overrunning analysis finishes
// in the background and its result is dropped.
func (an *Analyzer) analyzeWithin(ctx context.Context, a intel.Article, window []intel.Article) intel.IntelligenceAssessment {
	if err := ctx.Err(); err != nil {
		return an.Fallback(a, an.now(), &intel.AnalysisError{ArticleID: a.ID, Stage: "batch", Cause: err})
	}
	actx, cancel := context.WithTimeout(ctx, an.timeout)
	defer cancel()

	done := make(chan intel.IntelligenceAssessment, 1)
	go func() { done <- an.Analyze(a, window) }()
	select {
	case as := <-done:
		return as
	case <-actx.Done():
		err := &intel.AnalysisError{ArticleID: a.ID, Stage: "batch", Cause: fmt.Errorf("analysis: %w", actx.Err())}
		logging.Warn("analysis timed out, using fallback", "article", a.ID, "timeout", an.timeout)
		return an.Fallback(a, an.now(), err)
	}
}
