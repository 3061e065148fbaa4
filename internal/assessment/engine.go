package assessment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"edpsych-connect/internal/common/errors"
)

// Submission is a client's set of answers.
type Submission struct {
	Age       int            `json:"age"`
	Gender    string         `json:"gender,omitempty"`
	Responses map[string]int `json:"responses"`
}

// CategoryScore is the per-category part of a result.
type CategoryScore struct {
	Score           float64  `json:"score"`
	Severity        Band     `json:"severity"`
	Interpretation  string   `json:"interpretation"`
	Recommendations []string `json:"recommendations"`
}

// Result is the scored assessment returned to the client. Categories encode
// in catalog order.
type Result struct {
	Assessment      string                   `json:"assessment"`
	OverallScore    float64                  `json:"overallScore"`
	OverallSeverity Band                     `json:"overallSeverity"`
	Categories      map[string]CategoryScore `json:"categories"`
	Summary         string                   `json:"summary"`

	order []string
}

// CategoryOrder returns the category names in encoding order. Results that
// were decoded rather than composed fall back to name order.
func (r *Result) CategoryOrder() []string {
	if len(r.order) == len(r.Categories) {
		return r.order
	}
	names := make([]string, 0, len(r.Categories))
	for name := range r.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r Result) MarshalJSON() ([]byte, error) {
	var cats bytes.Buffer
	cats.WriteByte('{')
	for i, name := range r.CategoryOrder() {
		if i > 0 {
			cats.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Categories[name])
		if err != nil {
			return nil, err
		}
		cats.Write(key)
		cats.WriteByte(':')
		cats.Write(val)
	}
	cats.WriteByte('}')

	var categories json.RawMessage = cats.Bytes()
	if r.Categories == nil {
		categories = json.RawMessage("null")
	}
	return json.Marshal(struct {
		Assessment      string          `json:"assessment"`
		OverallScore    float64         `json:"overallScore"`
		OverallSeverity Band            `json:"overallSeverity"`
		Categories      json.RawMessage `json:"categories"`
		Summary         string          `json:"summary"`
	}{r.Assessment, r.OverallScore, r.OverallSeverity, categories, r.Summary})
}

// Engine holds the validated catalogs and scores submissions against them.
type Engine struct {
	catalogs     map[string]*Catalog
	order        []string
	allowPartial bool
}

type Option func(*Engine)

// WithPartialSubmissions scores submissions that leave questions unanswered.
func WithPartialSubmissions(allow bool) Option {
	return func(e *Engine) { e.allowPartial = allow }
}

// NewEngine validates every catalog and indexes it by id.
func NewEngine(catalogs []*Catalog, opts ...Option) (*Engine, error) {
	e := &Engine{catalogs: make(map[string]*Catalog, len(catalogs))}
	for _, opt := range opts {
		opt(e)
	}

	for _, c := range catalogs {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := e.catalogs[c.ID]; dup {
			return nil, errors.NewCatalogInvalidError(c.ID, "duplicate catalog id")
		}
		e.catalogs[c.ID] = c
		e.order = append(e.order, c.ID)
	}
	return e, nil
}

// Catalog returns the catalog with the given id.
func (e *Engine) Catalog(id string) (*Catalog, bool) {
	c, ok := e.catalogs[id]
	return c, ok
}

// CatalogForTool resolves an MCP tool name such as "anxiety-assessment".
func (e *Engine) CatalogForTool(tool string) (*Catalog, bool) {
	for _, id := range e.order {
		if c := e.catalogs[id]; c.ToolName() == tool {
			return c, true
		}
	}
	return nil, false
}

// Catalogs returns the catalogs in registration order.
func (e *Engine) Catalogs() []*Catalog {
	out := make([]*Catalog, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.catalogs[id])
	}
	return out
}

// Assess validates a submission and scores it against the named catalog.
func (e *Engine) Assess(id string, sub Submission) (*Result, error) {
	c, ok := e.catalogs[id]
	if !ok {
		return nil, errors.NewAssessmentNotFoundError(id)
	}
	if err := e.validate(c, sub); err != nil {
		return nil, err
	}
	return Compose(c, sub), nil
}

func (e *Engine) validate(c *Catalog, sub Submission) error {
	if len(sub.Responses) == 0 {
		return errors.NewValidationError("Assessment responses are required", "responses: empty")
	}
	if sub.Age < 0 {
		return errors.NewValidationError("Age must not be negative", fmt.Sprintf("age: %d", sub.Age))
	}

	if unknown := c.Unknown(sub.Responses); len(unknown) > 0 {
		return errors.NewValidationError("Responses contain unknown question ids",
			fmt.Sprintf("assessment: %s, unknown: %s", c.ID, strings.Join(unknown, ", ")))
	}

	for _, cat := range c.Categories {
		for _, q := range cat.Questions {
			rating, ok := sub.Responses[q.ID]
			if ok && (rating < MinRating || rating > MaxRating) {
				return errors.NewInvalidRatingError(q.ID, rating, MinRating, MaxRating)
			}
		}
	}

	missing := c.Missing(sub.Responses)
	if len(missing) == 0 || e.allowPartial {
		return nil
	}
	return errors.NewIncompleteSubmissionError(c.ID, missing)
}

// Compose builds the full result for an already validated submission. A
// category with no answers is reported as not assessed with no advice.
func Compose(c *Catalog, sub Submission) *Result {
	scores := c.Score(sub.Responses)

	result := &Result{
		Assessment:      c.ID,
		OverallScore:    scores.Overall,
		OverallSeverity: c.Classify(scores.Overall),
		Categories:      make(map[string]CategoryScore, len(c.Categories)),
		order:           make([]string, 0, len(c.Categories)),
	}

	for _, cat := range c.Categories {
		result.order = append(result.order, cat.Name)
		score, answered := scores.Categories[cat.Name]
		if !answered {
			result.Categories[cat.Name] = CategoryScore{
				Severity:        BandNotAssessed,
				Interpretation:  fmt.Sprintf("No responses were given for %s.", c.label(cat.Name)),
				Recommendations: []string{},
			}
			continue
		}
		band := c.Classify(score)
		result.Categories[cat.Name] = CategoryScore{
			Score:           score,
			Severity:        band,
			Interpretation:  c.Interpretation(cat.Name, band),
			Recommendations: c.Recommendations(cat.Name, band),
		}
	}

	result.Summary = c.Summarize(scores.Overall, scores.Categories, sub.Age)
	return result
}
