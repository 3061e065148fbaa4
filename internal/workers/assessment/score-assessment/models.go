// internal/workers/assessment/score-assessment/models.go
package scoreassessment

import "edpsych-connect/internal/assessment"

// Input is read from the process variables.
type Input struct {
	Assessment string         `json:"assessment"`
	Age        int            `json:"age"`
	Gender     string         `json:"gender,omitempty"`
	Responses  map[string]int `json:"responses"`
}

type Output struct {
	AssessmentResult *assessment.Result `json:"assessmentResult"`
}
