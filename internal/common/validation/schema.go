package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Request body schemas, validated before decoding into typed structs.
const (
	SubmissionSchema = `{
	"type": "object",
	"properties": {
		"age": {"type": "integer", "minimum": 0, "maximum": 130},
		"gender": {"type": "string", "maxLength": 64},
		"responses": {
			"type": "object",
			"additionalProperties": {"type": "integer"}
		}
	}
}`

	ApproveDraftSchema = `{
	"type": "object",
	"properties": {
		"filename": {"type": "string", "minLength": 1, "maxLength": 255}
	},
	"required": ["filename"]
}`

	LoginSchema = `{
	"type": "object",
	"properties": {
		"username": {"type": "string", "minLength": 1},
		"password": {"type": "string", "minLength": 1}
	},
	"required": ["username", "password"]
}`

	LogoutSchema = `{
	"type": "object",
	"properties": {
		"refreshToken": {"type": "string", "minLength": 1}
	},
	"required": ["refreshToken"]
}`

	ContactSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 200},
		"email": {"type": "string", "format": "email"},
		"phone": {"type": "string", "maxLength": 40},
		"subject": {"type": "string", "maxLength": 200},
		"message": {"type": "string", "minLength": 1, "maxLength": 5000}
	},
	"required": ["name", "email", "message"]
}`

	CatalogRegistrySchema = `{
	"type": "object",
	"properties": {
		"catalogs": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["id", "polarity", "categories", "thresholds", "fallback"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"polarity": {"enum": ["concern", "strength"]},
					"fallback": {"enum": ["low", "moderate", "high"]},
					"thresholds": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["bound", "band"],
							"properties": {
								"bound": {"type": "number"},
								"band": {"enum": ["low", "moderate", "high"]}
							}
						}
					},
					"categories": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["name", "questions", "recommendations"],
							"properties": {
								"name": {"type": "string", "minLength": 1},
								"questions": {
									"type": "array",
									"items": {
										"type": "object",
										"required": ["id"],
										"properties": {"id": {"type": "string", "minLength": 1}}
									}
								},
								"recommendations": {
									"type": "object",
									"additionalProperties": {
										"type": "array",
										"items": {"type": "string"}
									}
								}
							}
						}
					}
				}
			}
		}
	},
	"required": ["catalogs"]
}`
)

var compiled = map[string]*gojsonschema.Schema{}

func init() {
	for _, s := range []string{SubmissionSchema, ApproveDraftSchema, LoginSchema, LogoutSchema, ContactSchema, CatalogRegistrySchema} {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
		if err != nil {
			panic(fmt.Sprintf("validation: invalid built-in schema: %v", err))
		}
		compiled[s] = schema
	}
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateDocument checks a raw JSON document against one of the schemas above.
// A non-nil error means the document is not JSON at all.
func ValidateDocument(schema string, raw []byte) (*ValidationResult, error) {
	s, ok := compiled[schema]
	if !ok {
		var err error
		s, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
		if err != nil {
			return nil, fmt.Errorf("schema error: %w", err)
		}
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

// ValidateCatalogRegistry validates a question catalog registry file.
func ValidateCatalogRegistry(raw []byte) (*ValidationResult, error) {
	return ValidateDocument(CatalogRegistrySchema, raw)
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

// String joins every error as "field: message".
func (vr *ValidationResult) String() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
