// internal/workers/content/approve-draft/models.go
package approvedraft

type Input struct {
	Filename   string `json:"filename"`
	ApprovedBy string `json:"approvedBy,omitempty"`
}

type Output struct {
	Approved bool   `json:"approved"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
}
