package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/abelbrown/watchfloor/internal/intel"
)

// SaveArticles stores articles, returning the count of new rows.
// Articles whose id is already stored are ignored.
func (s *Store) SaveArticles(articles []intel.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	newCount := 0
	err := s.withTx(func(tx *sql.Tx) error {
		for _, a := range articles {
			if a.ID == "" {
				return fmt.Errorf("article %q: missing id", a.Title)
			}
			payload, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("encode article %s: %w", a.ID, err)
			}
			res, err := sq.Insert("articles").
				Options("OR IGNORE").
				Columns("id", "url", "title", "domain", "ts", "payload").
				Values(a.ID, a.URL, a.Title, a.Host(), articleTS(a), string(payload)).
				RunWith(tx).
				Exec()
			if err != nil {
				return fmt.Errorf("insert article %s: %w", a.ID, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				newCount++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newCount, nil
}

// RecentArticles returns up to limit of the newest articles at or after
// since, oldest first. A zero since or limit <= 0 disables that bound.
func (s *Store) RecentArticles(since time.Time, limit int) ([]intel.Article, error) {
	q := sq.Select("payload").
		From("articles").
		OrderBy("ts DESC", "id DESC")
	if !since.IsZero() {
		q = q.Where(sq.GtOrEq{"ts": since.UnixNano()})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	out, err := s.queryArticles(q)
	if err != nil {
		return nil, fmt.Errorf("recent articles: %w", err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Unassessed returns up to limit stored articles that have no assessment
// yet, oldest first.
func (s *Store) Unassessed(limit int) ([]intel.Article, error) {
	q := sq.Select("a.payload").
		From("articles a").
		LeftJoin("assessments s ON s.article_id = a.id").
		Where(sq.Eq{"s.id": nil}).
		OrderBy("a.ts ASC", "a.id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	out, err := s.queryArticles(q)
	if err != nil {
		return nil, fmt.Errorf("unassessed articles: %w", err)
	}
	return out, nil
}

// Article looks up one article. ok is false when it is not stored.
func (s *Store) Article(id string) (a intel.Article, ok bool, err error) {
	out, err := s.queryArticles(sq.Select("payload").From("articles").Where(sq.Eq{"id": id}))
	if err != nil || len(out) == 0 {
		return intel.Article{}, false, err
	}
	return out[0], true, nil
}

func (s *Store) queryArticles(q sq.SelectBuilder) ([]intel.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := q.RunWith(s.db).Query()
	if err != nil {
		return nil, err
	}
	payloads, err := scanPayloads(rows)
	if err != nil {
		return nil, err
	}
	out := make([]intel.Article, 0, len(payloads))
	for _, p := range payloads {
		var a intel.Article
		if err := json.Unmarshal([]byte(p), &a); err != nil {
			return nil, fmt.Errorf("decode article: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}

func articleTS(a intel.Article) int64 {
	if t, ok := a.Timestamp(); ok {
		return t.UnixNano()
	}
	return 0
}
