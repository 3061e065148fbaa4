package assessment

import (
	"encoding/json"
	"fmt"
	"os"

	"edpsych-connect/internal/common/validation"
)

type catalogFile struct {
	Catalogs []*Catalog `json:"catalogs"`
}

// LoadCatalogs reads a catalog registry file. The file is checked against the
// catalog JSON schema before decoding; semantic checks run in NewEngine.
func LoadCatalogs(path string) ([]*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog registry %s: %w", path, err)
	}

	result, err := validation.ValidateCatalogRegistry(raw)
	if err != nil {
		return nil, fmt.Errorf("validate catalog registry %s: %w", path, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("catalog registry %s: %s", path, result.String())
	}

	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog registry %s: %w", path, err)
	}
	if len(file.Catalogs) == 0 {
		return nil, fmt.Errorf("catalog registry %s: no catalogs", path)
	}
	return file.Catalogs, nil
}
