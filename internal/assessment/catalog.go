// Package assessment scores questionnaire submissions against fixed question
// catalogs and composes the interpretation, recommendations and summary returned
// to the client.
package assessment

import (
	"fmt"
	"strings"

	"edpsych-connect/internal/common/errors"
)

// Band is an ordinal severity level.
type Band string

const (
	BandLow      Band = "low"
	BandModerate Band = "moderate"
	BandHigh     Band = "high"

	// BandNotAssessed marks a category with no answered questions. It is
	// never produced by a threshold table.
	BandNotAssessed Band = "not_assessed"
)

// Bands lists every band in ascending order of concern.
var Bands = []Band{BandLow, BandModerate, BandHigh}

// Description is the phrase used for a band in interpretations and summaries.
func (b Band) Description() string {
	switch b {
	case BandLow:
		return "minimal to mild"
	case BandModerate:
		return "moderate"
	case BandHigh:
		return "severe"
	case BandNotAssessed:
		return "not assessed"
	}
	return string(b)
}

// Polarity tells whether a high rating signals concern or strength.
type Polarity string

const (
	HigherIsConcern  Polarity = "concern"
	HigherIsStrength Polarity = "strength"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Question is a single rated item.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Category groups questions scored together.
type Category struct {
	Name string `json:"name"`
	// Label completes "You are experiencing <band> <label>."
	Label string `json:"label"`
	// Focus completes "...most significant challenges related to <focus>."
	Focus           string            `json:"focus"`
	Questions       []Question        `json:"questions"`
	Recommendations map[Band][]string `json:"recommendations"`
}

// Threshold is one row of the ordered boundary table.
type Threshold struct {
	Bound float64 `json:"bound"`
	Band  Band    `json:"band"`
}

// Closings are the age-conditioned sentences appended to the summary.
type Closings struct {
	AdultAge int    `json:"adult_age"`
	Youth    string `json:"youth"`
	Adult    string `json:"adult"`
	Footer   string `json:"footer"`
}

// Catalog is an immutable questionnaire definition.
type Catalog struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Subject    string      `json:"subject"`
	Polarity   Polarity    `json:"polarity"`
	Categories []Category  `json:"categories"`
	Thresholds []Threshold `json:"thresholds"`
	Fallback   Band        `json:"fallback"`
	Closings   Closings    `json:"closings"`
}

// ToolName is the name the assessment is exposed under on the MCP surface.
func (c *Catalog) ToolName() string {
	return c.ID + "-assessment"
}

// QuestionCount returns the number of questions across all categories.
func (c *Catalog) QuestionCount() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Questions)
	}
	return n
}

// Category looks a category up by name.
func (c *Catalog) Category(name string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}

// Validate checks the catalog is usable: unique question ids, an ordered
// threshold table and a non-empty recommendation list for every category and band.
func (c *Catalog) Validate() error {
	var problems []string

	if c.ID == "" {
		problems = append(problems, "id is required")
	}
	if c.Polarity != HigherIsConcern && c.Polarity != HigherIsStrength {
		problems = append(problems, fmt.Sprintf("unknown polarity %q", c.Polarity))
	}
	if len(c.Categories) == 0 {
		problems = append(problems, "at least one category is required")
	}
	if len(c.Thresholds) == 0 {
		problems = append(problems, "at least one threshold is required")
	}
	if !isBand(c.Fallback) {
		problems = append(problems, fmt.Sprintf("fallback band %q is not a known band", c.Fallback))
	}

	for i, t := range c.Thresholds {
		if !isBand(t.Band) {
			problems = append(problems, fmt.Sprintf("threshold %d has unknown band %q", i, t.Band))
		}
		if i == 0 {
			continue
		}
		prev := c.Thresholds[i-1].Bound
		if c.Polarity == HigherIsConcern && t.Bound <= prev {
			problems = append(problems, fmt.Sprintf("threshold %d bound %.2f must be above %.2f", i, t.Bound, prev))
		}
		if c.Polarity == HigherIsStrength && t.Bound >= prev {
			problems = append(problems, fmt.Sprintf("threshold %d bound %.2f must be below %.2f", i, t.Bound, prev))
		}
	}

	seen := make(map[string]string)
	for _, cat := range c.Categories {
		if cat.Name == "" {
			problems = append(problems, "category name is required")
		}
		if len(cat.Questions) == 0 {
			problems = append(problems, fmt.Sprintf("category %q has no questions", cat.Name))
		}
		for _, q := range cat.Questions {
			if other, dup := seen[q.ID]; dup {
				problems = append(problems, fmt.Sprintf("question %q appears in %q and %q", q.ID, other, cat.Name))
			}
			seen[q.ID] = cat.Name
		}
		for _, band := range c.reachableBands() {
			recs := cat.Recommendations[band]
			if len(recs) == 0 {
				problems = append(problems, fmt.Sprintf("category %q has no recommendations for %s", cat.Name, band))
			}
		}
	}

	if len(problems) > 0 {
		return errors.NewCatalogInvalidError(c.ID, strings.Join(problems, "; "))
	}
	return nil
}

// reachableBands is every band the classifier can return for this catalog.
func (c *Catalog) reachableBands() []Band {
	out := []Band{}
	seen := map[Band]bool{}
	for _, t := range c.Thresholds {
		if !seen[t.Band] {
			seen[t.Band] = true
			out = append(out, t.Band)
		}
	}
	if !seen[c.Fallback] {
		out = append(out, c.Fallback)
	}
	return out
}

func isBand(b Band) bool {
	for _, known := range Bands {
		if b == known {
			return true
		}
	}
	return false
}
