package assessment

import "fmt"

// Recommendations returns a copy of the canned advice for a category at a band.
// Catalog validation guarantees every reachable pair is populated.
func (c *Catalog) Recommendations(category string, band Band) []string {
	cat, ok := c.Category(category)
	if !ok {
		return nil
	}
	recs := cat.Recommendations[band]
	out := make([]string, len(recs))
	copy(out, recs)
	return out
}

// Interpretation is the one-line reading of a category score.
func (c *Catalog) Interpretation(category string, band Band) string {
	return fmt.Sprintf("You are experiencing %s %s.", band.Description(), c.label(category))
}

func (c *Catalog) label(category string) string {
	if cat, ok := c.Category(category); ok && cat.Label != "" {
		return cat.Label
	}
	return category
}
