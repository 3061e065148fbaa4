// Package mcptools exposes the assessment catalogs as MCP tools and resources.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"edpsych-connect/internal/assessment"
	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/logger"
)

const ServerName = "psychology-tools"

// Tools holds the handlers shared by every assessment tool.
type Tools struct {
	service *assessment.Service
	log     logger.Logger
}

func NewTools(service *assessment.Service, log logger.Logger) *Tools {
	return &Tools{
		service: service,
		log:     log.WithFields(map[string]interface{}{"component": "mcp-tools"}),
	}
}

// NewServer builds the MCP server with one tool and one questions resource
// per catalog.
func NewServer(t *Tools, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
	)

	for _, c := range t.service.Engine().Catalogs() {
		s.AddTool(ToolDefinition(c), t.AssessHandler(c.ID))
		s.AddResource(QuestionsResource(c), t.QuestionsHandler(c.ID))
	}
	return s
}

// ToolName is the MCP tool name for a catalog, e.g. "executive_function_assessment".
func ToolName(c *assessment.Catalog) string {
	return strings.ReplaceAll(c.ToolName(), "-", "_")
}

// QuestionsURI is the resource URI listing a catalog's questions.
func QuestionsURI(id string) string {
	return fmt.Sprintf("psychology://assessments/%s/questions", id)
}

func ToolDefinition(c *assessment.Catalog) mcp.Tool {
	return mcp.NewTool(ToolName(c),
		mcp.WithDescription(fmt.Sprintf(
			"Scores the %s questionnaire (%d questions rated %d-%d) and returns per-category scores, "+
				"interpretations, recommendations and a summary. Read %s for the question ids.",
			c.Title, c.QuestionCount(), assessment.MinRating, assessment.MaxRating, QuestionsURI(c.ID))),
		mcp.WithNumber("age",
			mcp.Required(),
			mcp.Description("Age of the person the responses describe, in years"),
		),
		mcp.WithString("gender",
			mcp.Description("Optional gender, recorded with the result"),
		),
		mcp.WithObject("responses",
			mcp.Required(),
			mcp.Description("Map of question id to rating"),
		),
	)
}

func QuestionsResource(c *assessment.Catalog) mcp.Resource {
	return mcp.NewResource(
		QuestionsURI(c.ID),
		c.Title+" questions",
		mcp.WithResourceDescription(fmt.Sprintf("Standard %s questions by category", c.Title)),
		mcp.WithMIMEType("application/json"),
	)
}

// AssessHandler scores the catalog with the given id.
func (t *Tools) AssessHandler(id string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sub, err := submissionFromArgs(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := t.service.Assess(ctx, id, sub)
		if err != nil {
			t.log.Debug("tool call rejected", map[string]interface{}{"assessment": id, "error": err})
			return mcp.NewToolResultError(toolErrorText(errors.Normalize(err))), nil
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling result: %w", err)
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// QuestionsHandler serves the questionnaire of the catalog with the given id.
func (t *Tools) QuestionsHandler(id string) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		c, ok := t.service.Engine().Catalog(id)
		if !ok {
			return nil, errors.NewAssessmentNotFoundError(id)
		}

		data, err := json.MarshalIndent(c.Questionnaire(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling questionnaire: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

// submissionFromArgs converts loosely typed JSON arguments. Ratings must be
// whole numbers; range checks are left to the engine.
func submissionFromArgs(args map[string]interface{}) (assessment.Submission, error) {
	var sub assessment.Submission

	age, ok := args["age"].(float64)
	if !ok {
		return sub, fmt.Errorf("'age' is required and must be a number")
	}
	if age != math.Trunc(age) {
		return sub, fmt.Errorf("'age' must be a whole number")
	}
	sub.Age = int(age)

	if g, ok := args["gender"].(string); ok {
		sub.Gender = g
	}

	raw, ok := args["responses"].(map[string]interface{})
	if !ok || len(raw) == 0 {
		return sub, fmt.Errorf("'responses' is required and must be a non-empty object")
	}
	sub.Responses = make(map[string]int, len(raw))
	for qid, v := range raw {
		rating, ok := v.(float64)
		if !ok || rating != math.Trunc(rating) {
			return sub, fmt.Errorf("response %q must be a whole number", qid)
		}
		sub.Responses[qid] = int(rating)
	}
	return sub, nil
}

func toolErrorText(err *errors.StandardError) string {
	if err.Details == "" {
		return err.Message
	}
	return fmt.Sprintf("%s (%s)", err.Message, err.Details)
}
