package assessment

import "fmt"

// MostSignificant returns the category of greatest concern: the highest score
// for concern-scored catalogs, the lowest for strength-scored ones. Ties keep
// the first category in catalog order.
func (c *Catalog) MostSignificant(categoryScores map[string]float64) string {
	best := ""
	for _, cat := range c.Categories {
		score, ok := categoryScores[cat.Name]
		if !ok {
			continue
		}
		if best == "" || c.moreConcerning(score, categoryScores[best]) {
			best = cat.Name
		}
	}
	return best
}

// Summarize composes the closing paragraph for a scored submission.
func (c *Catalog) Summarize(overall float64, categoryScores map[string]float64, age int) string {
	band := c.Classify(overall)

	focus := ""
	if name := c.MostSignificant(categoryScores); name != "" {
		cat, _ := c.Category(name)
		focus = cat.Focus
		if focus == "" {
			focus = cat.Name
		}
	}

	closing := c.Closings.Adult
	if age < c.Closings.AdultAge {
		closing = c.Closings.Youth
	}

	return fmt.Sprintf(
		"Based on your responses, you are experiencing %s levels of %s overall, with your most significant challenges related to %s. %s %s",
		band.Description(), c.Subject, focus, closing, c.Closings.Footer,
	)
}
