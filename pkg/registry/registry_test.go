package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRegistry() *ToolRegistry {
	return &ToolRegistry{
		Version: "1.0.0",
		Servers: []Server{{
			Name: "psychology-tools",
			Tools: []Tool{
				{Name: "anxiety-assessment", Status: StatusAvailable, InputSchema: map[string]string{"age": "number"}},
			},
			Resources: []Resource{{URI: "psychology://assessments/anxiety/questions", Type: "json"}},
		}},
	}
}

func TestSaveAndLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tool-registry.json")
	require.NoError(t, SaveRegistry(sampleRegistry(), path))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, sampleRegistry(), reg)
}

func TestUpsertServer(t *testing.T) {
	reg := sampleRegistry()
	reg.UpsertServer(Server{Name: "psychology-tools", Description: "replaced"})
	reg.UpsertServer(Server{Name: "progress-tracker"})

	require.Len(t, reg.Servers, 2)
	assert.Equal(t, "replaced", reg.Servers[0].Description)
	_, ok := reg.Server("progress-tracker")
	assert.True(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*ToolRegistry)
		wantErr string
	}{
		{name: "valid", modify: func(*ToolRegistry) {}},
		{name: "empty", modify: func(r *ToolRegistry) { r.Servers = nil }, wantErr: "no servers"},
		{
			name:    "duplicate server",
			modify:  func(r *ToolRegistry) { r.Servers = append(r.Servers, Server{Name: "psychology-tools"}) },
			wantErr: "duplicate server",
		},
		{
			name: "tool in two servers",
			modify: func(r *ToolRegistry) {
				r.Servers = append(r.Servers, Server{Name: "other", Tools: []Tool{{Name: "anxiety-assessment"}}})
			},
			wantErr: "declared by both",
		},
		{
			name:    "unknown status",
			modify:  func(r *ToolRegistry) { r.Servers[0].Tools[0].Status = "done" },
			wantErr: "unknown status",
		},
		{
			name:    "resource without uri",
			modify:  func(r *ToolRegistry) { r.Servers[0].Resources[0].URI = "" },
			wantErr: "without a uri",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := sampleRegistry()
			tt.modify(reg)
			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
