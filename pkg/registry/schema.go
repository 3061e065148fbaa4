// pkg/registry/schema.go
package registry

// Tool implementation states.
const (
	StatusPlanned   = "planned"
	StatusAvailable = "available"
)

type ToolRegistry struct {
	Version     string   `json:"version"`
	LastUpdated string   `json:"lastUpdated"`
	Servers     []Server `json:"servers"`
}

type Server struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Tools       []Tool     `json:"tools"`
	Resources   []Resource `json:"resources"`
}

// Tool describes one callable tool. Schemas map a field name to a type hint.
type Tool struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Status       string            `json:"status,omitempty"`
	InputSchema  map[string]string `json:"inputSchema"`
	OutputSchema map[string]string `json:"outputSchema"`
	ErrorCodes   []string          `json:"errorCodes,omitempty"`
}

type Resource struct {
	URI         string `json:"uri"`
	Description string `json:"description"`
	Type        string `json:"type"`
}
