package mcptools

import (
	"fmt"
	"strings"
	"time"

	"edpsych-connect/internal/assessment"
	"edpsych-connect/pkg/registry"
)

var (
	assessmentInput = map[string]string{
		"age":       "number",
		"gender":    "string",
		"responses": "Record<string, number>",
	}
	assessmentOutput = map[string]string{
		"overallScore":    "number",
		"overallSeverity": "'low' | 'moderate' | 'high'",
		"categories":      "Record<string, { score: number, interpretation: string, recommendations: string[] }>",
		"summary":         "string",
	}
	assessmentErrors = []string{
		"VALIDATION_FAILED",
		"INCOMPLETE_SUBMISSION",
		"INVALID_RATING",
		"ASSESSMENT_NOT_FOUND",
	}
)

// ServerEntry describes this process's tools and resources as a registry server.
func ServerEntry(catalogs []*assessment.Catalog) registry.Server {
	s := registry.Server{
		Name:        ServerName,
		Description: "Provides psychological assessment and intervention tools",
	}
	for _, c := range catalogs {
		subject := strings.ToLower(strings.TrimSuffix(c.Title, " Assessment"))
		s.Tools = append(s.Tools, registry.Tool{
			Name:         c.ToolName(),
			Description:  fmt.Sprintf("Analyzes %s assessment data and provides personalized recommendations", subject),
			Status:       registry.StatusAvailable,
			InputSchema:  assessmentInput,
			OutputSchema: assessmentOutput,
			ErrorCodes:   assessmentErrors,
		})
		s.Resources = append(s.Resources, registry.Resource{
			URI:         QuestionsURI(c.ID),
			Description: fmt.Sprintf("Standard %s assessment questions by category", subject),
			Type:        "json",
		})
	}
	return s
}

// SyncRegistry replaces the psychology-tools entry of reg with the current
// catalogs, leaving other servers untouched. A nil reg starts a new registry.
func SyncRegistry(reg *registry.ToolRegistry, catalogs []*assessment.Catalog, now time.Time) *registry.ToolRegistry {
	if reg == nil {
		reg = &registry.ToolRegistry{Version: "1.0.0"}
	}
	reg.UpsertServer(ServerEntry(catalogs))
	reg.LastUpdated = now.UTC().Format(time.RFC3339)
	return reg
}
