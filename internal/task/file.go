package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// fileVersion is the persisted document version.
const fileVersion = 1

// file is the on-disk document: a version marker and the ordered task
// records.
type file struct {
	Version int    `json:"version"`
	Tasks   []Task `json:"tasks"`
}

// Load reads the tasks file. A missing file yields an empty store; a
// malformed or invariant-violating file is a StorageError — corrupt data
// is never silently discarded. Warnings (e.g. a configured but missing
// schema) are returned alongside success.
func (s *Store) Load() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.tasks = nil
			return nil, nil
		}
		return nil, &StorageError{Path: s.path, Err: fmt.Errorf("read: %w", err)}
	}

	var warnings []string
	if s.schemaPath != "" {
		warning, err := validateWithSchema(data, s.schemaPath)
		if err != nil {
			return nil, &StorageError{Path: s.path, Err: err}
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &StorageError{Path: s.path, Err: fmt.Errorf("parse: %w", err)}
	}
	if f.Version != 0 && f.Version != fileVersion {
		return nil, &StorageError{Path: s.path, Err: fmt.Errorf("unsupported version %d", f.Version)}
	}

	for i := range f.Tasks {
		if err := f.Tasks[i].validate(); err != nil {
			return nil, &StorageError{Path: s.path, Err: fmt.Errorf("tasks[%d]: %w", i, err)}
		}
		f.Tasks[i].normalize()
	}

	s.tasks = f.Tasks
	return warnings, nil
}

// Save rewrites the tasks file in full with 2-space indentation, creating
// parent directories as needed.
func (s *Store) Save() error {
	f := file{Version: fileVersion, Tasks: s.tasks}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return &StorageError{Path: s.path, Err: fmt.Errorf("marshal: %w", err)}
	}
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &StorageError{Path: s.path, Err: fmt.Errorf("create dir: %w", err)}
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return &StorageError{Path: s.path, Err: fmt.Errorf("write: %w", err)}
	}
	return nil
}

// validateWithSchema checks the raw document against the JSON Schema at
// schemaPath. A missing or uncompilable schema degrades to a warning so a
// broken schema never blocks access to the tasks themselves; a document
// that fails a valid schema is an error.
func validateWithSchema(data []byte, schemaPath string) (warning string, err error) {
	absPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Sprintf("invalid schema path: %v", err), nil
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("schema file not found: %s", absPath), nil
		}
		return fmt.Sprintf("failed to read schema file: %v", err), nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile(absPath)
	if err != nil {
		return fmt.Sprintf("invalid schema file: %v", err), nil
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parse: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return "", fmt.Errorf("schema: %w", err)
	}
	return "", nil
}
