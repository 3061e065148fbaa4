// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"edpsych-connect/internal/assessment"
	"edpsych-connect/internal/mcptools"
	"edpsych-connect/pkg/registry"
)

const defaultRegistryPath = "configs/tool-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add-tool":
		err = runAddTool(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "sync":
		err = runSync(os.Args[2:])
	case "help":
		help()
		return
	default:
		help()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAddTool(args []string) error {
	fs := flag.NewFlagSet("add-tool", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	serverName := fs.String("server", "", "Server name (e.g., vr-environments)")
	name := fs.String("name", "", "Tool name (e.g., generate-environment)")
	description := fs.String("description", "", "Description")
	status := fs.String("status", registry.StatusPlanned, "Status (planned, available)")
	fs.Parse(args)

	if *serverName == "" || *name == "" || *description == "" {
		fs.Usage()
		return fmt.Errorf("server, name and description are required for add-tool")
	}
	if err := addTool(*path, *serverName, registry.Tool{
		Name:         *name,
		Description:  *description,
		Status:       *status,
		InputSchema:  map[string]string{},
		OutputSchema: map[string]string{},
	}, time.Now()); err != nil {
		return err
	}
	fmt.Printf("Added tool %s to server %s\n", *name, *serverName)
	return nil
}

func runUpdate(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	serverName := fs.String("server", "", "Server name")
	name := fs.String("name", "", "Tool name to update")
	field := fs.String("field", "", "Field to update (status, description)")
	value := fs.String("value", "", "New value for the field")
	fs.Parse(args)

	if *serverName == "" || *name == "" || *field == "" || *value == "" {
		fs.Usage()
		return fmt.Errorf("server, name, field and value are required for update")
	}
	if err := updateTool(*path, *serverName, *name, *field, *value, time.Now()); err != nil {
		return err
	}
	fmt.Printf("Updated tool %s, field %s to %s\n", *name, *field, *value)
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	fs.Parse(args)

	n, err := validateRegistry(*path)
	if err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Printf("Registry validation passed. Found %d servers.\n", n)
	return nil
}

func runSync(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	catalogPath := fs.String("catalogs", "", "Optional JSON catalog registry replacing the built-in catalogs")
	fs.Parse(args)

	catalogs := assessment.DefaultCatalogs()
	if *catalogPath != "" {
		loaded, err := assessment.LoadCatalogs(*catalogPath)
		if err != nil {
			return err
		}
		catalogs = loaded
	}

	if err := syncRegistry(*path, catalogs, time.Now()); err != nil {
		return err
	}
	fmt.Printf("Synced %d assessment tools into %s\n", len(catalogs), *path)
	return nil
}

// loadOrCreate returns an empty registry when path does not exist yet.
func loadOrCreate(path string) (*registry.ToolRegistry, error) {
	reg, err := registry.LoadRegistry(path)
	if os.IsNotExist(err) {
		return &registry.ToolRegistry{Version: "1.0.0"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return reg, nil
}

func addTool(path, serverName string, tool registry.Tool, now time.Time) error {
	reg, err := loadOrCreate(path)
	if err != nil {
		return err
	}

	srv, ok := reg.Server(serverName)
	if !ok {
		reg.Servers = append(reg.Servers, registry.Server{Name: serverName})
		srv = &reg.Servers[len(reg.Servers)-1]
	}
	for _, existing := range srv.Tools {
		if existing.Name == tool.Name {
			return fmt.Errorf("tool %s already exists on server %s", tool.Name, serverName)
		}
	}
	srv.Tools = append(srv.Tools, tool)

	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = now.UTC().Format(time.RFC3339)
	return registry.SaveRegistry(reg, path)
}

func updateTool(path, serverName, name, field, value string, now time.Time) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	srv, ok := reg.Server(serverName)
	if !ok {
		return fmt.Errorf("server %s not found", serverName)
	}

	found := false
	for i := range srv.Tools {
		if srv.Tools[i].Name != name {
			continue
		}
		found = true
		switch field {
		case "status":
			srv.Tools[i].Status = value
		case "description":
			srv.Tools[i].Description = value
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		break
	}
	if !found {
		return fmt.Errorf("tool %s not found on server %s", name, serverName)
	}

	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = now.UTC().Format(time.RFC3339)
	return registry.SaveRegistry(reg, path)
}

func validateRegistry(path string) (int, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return 0, fmt.Errorf("failed to load registry: %w", err)
	}
	if len(reg.Servers) == 0 {
		return 0, fmt.Errorf("registry contains no servers")
	}
	if err := reg.Validate(); err != nil {
		return 0, err
	}
	return len(reg.Servers), nil
}

func syncRegistry(path string, catalogs []*assessment.Catalog, now time.Time) error {
	reg, err := loadOrCreate(path)
	if err != nil {
		return err
	}
	reg = mcptools.SyncRegistry(reg, catalogs, now)
	if err := reg.Validate(); err != nil {
		return err
	}
	return registry.SaveRegistry(reg, path)
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add-tool  Add a tool to a server in the registry
  update    Update an existing tool's field
  validate  Validate the registry file
  sync      Rewrite the psychology-tools entry from the assessment catalogs
  help      Show this help message

Examples:
  registry-updater add-tool -server vr-environments -name generate-environment -description "Creates personalized virtual environments"
  registry-updater update -server vr-environments -name generate-environment -field status -value available
  registry-updater sync -path configs/tool-registry.json
  registry-updater validate -path configs/tool-registry.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
