package intel

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput marks an article missing fields the engine relies on.
	// Analysis still proceeds with reduced confidence.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLexiconLookup marks a broken static lexicon. It indicates a
	// programming error, never a runtime condition.
	ErrLexiconLookup = errors.New("lexicon lookup failure")
)

// AnalysisError reports an unexpected failure inside one stage of an
// article's analysis.
type AnalysisError struct {
	ArticleID string
	Stage     string
	Cause     error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analyze %s: %s: %v", e.ArticleID, e.Stage, e.Cause)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Input fields checked by CheckInput.
const (
	FieldTitle     = "title"
	FieldURL       = "url"
	FieldTimestamp = "timestamp"
)

// InputProblem is one missing or unusable article field.
type InputProblem struct {
	Field string
	Err   error
}

// CheckInput lists the InvalidInput problems of an article.
func CheckInput(a Article) []InputProblem {
	var problems []InputProblem
	if strings.TrimSpace(a.Title) == "" {
		problems = append(problems, InputProblem{FieldTitle, fmt.Errorf("%w: missing title", ErrInvalidInput)})
	}
	if strings.TrimSpace(a.URL) == "" {
		problems = append(problems, InputProblem{FieldURL, fmt.Errorf("%w: missing url", ErrInvalidInput)})
	}
	if _, ok := a.Timestamp(); !ok {
		problems = append(problems, InputProblem{FieldTimestamp, fmt.Errorf("%w: missing publish and fetch time", ErrInvalidInput)})
	}
	return problems
}

// Validate joins every InvalidInput problem of a into one error.
func Validate(a Article) error {
	var errs []error
	for _, p := range CheckInput(a) {
		errs = append(errs, p.Err)
	}
	return errors.Join(errs...)
}
