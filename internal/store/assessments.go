package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/abelbrown/watchfloor/internal/intel"
)

// SaveAssessments stores assessments. Each assessment is a new row; a
// re-analysis never replaces an earlier one.
func (s *Store) SaveAssessments(assessments []intel.IntelligenceAssessment) error {
	if len(assessments) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(func(tx *sql.Tx) error {
		for _, a := range assessments {
			payload, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("encode assessment %s: %w", a.ID, err)
			}
			_, err = sq.Insert("assessments").
				Columns("id", "article_id", "analyzed_at", "priority", "priority_rank", "overall_score", "payload").
				Values(a.ID, a.ArticleID, a.AnalyzedAt.UnixNano(), string(a.Priority), a.Priority.Rank(),
					a.OverallScore, string(payload)).
				RunWith(tx).
				Exec()
			if err != nil {
				return fmt.Errorf("insert assessment %s: %w", a.ID, err)
			}
		}
		return nil
	})
}

// SaveAssessment stores one assessment.
func (s *Store) SaveAssessment(a intel.IntelligenceAssessment) error {
	return s.SaveAssessments([]intel.IntelligenceAssessment{a})
}

// Assessments returns up to limit assessments at or above minPriority,
// newest first, highest score first within the same analysis time.
func (s *Store) Assessments(minPriority intel.Level, limit int) ([]intel.IntelligenceAssessment, error) {
	q := sq.Select("payload").
		From("assessments").
		Where(sq.GtOrEq{"priority_rank": minPriority.Rank()}).
		OrderBy("analyzed_at DESC", "overall_score DESC", "id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return s.queryAssessments(q)
}

// AssessmentsFor returns every assessment of one article, newest first.
func (s *Store) AssessmentsFor(articleID string) ([]intel.IntelligenceAssessment, error) {
	return s.queryAssessments(sq.Select("payload").
		From("assessments").
		Where(sq.Eq{"article_id": articleID}).
		OrderBy("analyzed_at DESC", "id ASC"))
}

// Counts returns the number of stored articles and assessments.
func (s *Store) Counts() (articles, assessments int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := sq.Select("COUNT(*)").From("articles").RunWith(s.db).QueryRow().Scan(&articles); err != nil {
		return 0, 0, fmt.Errorf("count articles: %w", err)
	}
	if err := sq.Select("COUNT(*)").From("assessments").RunWith(s.db).QueryRow().Scan(&assessments); err != nil {
		return 0, 0, fmt.Errorf("count assessments: %w", err)
	}
	return articles, assessments, nil
}

func (s *Store) queryAssessments(q sq.SelectBuilder) ([]intel.IntelligenceAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := q.RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	payloads, err := scanPayloads(rows)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	out := make([]intel.IntelligenceAssessment, 0, len(payloads))
	for _, p := range payloads {
		var a intel.IntelligenceAssessment
		if err := json.Unmarshal([]byte(p), &a); err != nil {
			return nil, fmt.Errorf("decode assessment: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}
