package assessment

// Questionnaire is the client-facing view of a catalog: questions grouped by
// category, without the scoring tables.
type Questionnaire struct {
	ID         string                  `json:"id"`
	Title      string                  `json:"title"`
	Tool       string                  `json:"tool"`
	Scale      Scale                   `json:"scale"`
	Categories []QuestionnaireCategory `json:"categories"`
}

type QuestionnaireCategory struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

type Scale struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (c *Catalog) Questionnaire() Questionnaire {
	q := Questionnaire{
		ID:         c.ID,
		Title:      c.Title,
		Tool:       c.ToolName(),
		Scale:      Scale{Min: MinRating, Max: MaxRating},
		Categories: make([]QuestionnaireCategory, 0, len(c.Categories)),
	}
	for _, cat := range c.Categories {
		q.Categories = append(q.Categories, QuestionnaireCategory{
			Name:      cat.Name,
			Questions: append([]Question(nil), cat.Questions...),
		})
	}
	return q
}
