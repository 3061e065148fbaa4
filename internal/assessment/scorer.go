package assessment

import "sort"

// Scores holds the raw means computed from a submission.
type Scores struct {
	Overall    float64
	Categories map[string]float64
	// Answered counts ratings that matched a catalog question.
	Answered int
}

// Score computes the mean of the present ratings in each category and the
// mean of all present ratings. Categories with no answers are left out of
// Categories. Ratings for ids outside the catalog are ignored.
func (c *Catalog) Score(responses map[string]int) Scores {
	scores := Scores{Categories: make(map[string]float64, len(c.Categories))}

	total := 0
	for _, cat := range c.Categories {
		sum, count := 0, 0
		for _, q := range cat.Questions {
			rating, ok := responses[q.ID]
			if !ok {
				continue
			}
			sum += rating
			count++
		}
		if count > 0 {
			scores.Categories[cat.Name] = float64(sum) / float64(count)
		}
		total += sum
		scores.Answered += count
	}

	if scores.Answered > 0 {
		scores.Overall = float64(total) / float64(scores.Answered)
	}
	return scores
}

// Unknown returns response ids that match no catalog question, sorted.
func (c *Catalog) Unknown(responses map[string]int) []string {
	known := make(map[string]bool, c.QuestionCount())
	for _, cat := range c.Categories {
		for _, q := range cat.Questions {
			known[q.ID] = true
		}
	}
	var unknown []string
	for id := range responses {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Missing returns unanswered question ids in catalog order.
func (c *Catalog) Missing(responses map[string]int) []string {
	var missing []string
	for _, cat := range c.Categories {
		for _, q := range cat.Questions {
			if _, ok := responses[q.ID]; !ok {
				missing = append(missing, q.ID)
			}
		}
	}
	return missing
}
