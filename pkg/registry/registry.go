// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

func LoadRegistry(path string) (*ToolRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ToolRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// SaveRegistry writes reg as indented JSON, creating the parent directory.
func SaveRegistry(reg *ToolRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Server returns the server with the given name.
func (r *ToolRegistry) Server(name string) (*Server, bool) {
	for i := range r.Servers {
		if r.Servers[i].Name == name {
			return &r.Servers[i], true
		}
	}
	return nil, false
}

// UpsertServer replaces the server with the same name or appends s.
func (r *ToolRegistry) UpsertServer(s Server) {
	if existing, ok := r.Server(s.Name); ok {
		*existing = s
		return
	}
	r.Servers = append(r.Servers, s)
}

// Validate checks names are present and unique. Tool names must be unique
// across servers because the API routes on them.
func (r *ToolRegistry) Validate() error {
	if len(r.Servers) == 0 {
		return fmt.Errorf("registry contains no servers")
	}

	servers := make(map[string]bool)
	tools := make(map[string]string)
	for _, s := range r.Servers {
		if s.Name == "" {
			return fmt.Errorf("server missing required field: name")
		}
		if servers[s.Name] {
			return fmt.Errorf("duplicate server name: %s", s.Name)
		}
		servers[s.Name] = true

		for _, t := range s.Tools {
			if t.Name == "" {
				return fmt.Errorf("server %s has a tool without a name", s.Name)
			}
			if owner, ok := tools[t.Name]; ok {
				return fmt.Errorf("tool %s declared by both %s and %s", t.Name, owner, s.Name)
			}
			tools[t.Name] = s.Name
			if t.Status != "" && t.Status != StatusPlanned && t.Status != StatusAvailable {
				return fmt.Errorf("tool %s has unknown status %q", t.Name, t.Status)
			}
		}
		for _, res := range s.Resources {
			if res.URI == "" {
				return fmt.Errorf("server %s has a resource without a uri", s.Name)
			}
		}
	}
	return nil
}
