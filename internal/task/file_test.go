package task

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileYieldsEmptyStore(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "tasks.json"))
	warnings, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	now := func() time.Time { return testNow }

	s := NewStore(path, WithNow(now))
	mustAdd(t, s, "Buy groceries", PriorityHigh, "tomorrow", []string{"errands"})
	mustAdd(t, s, "Study", PriorityMedium, "", nil)
	if err := s.Complete(1); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := NewStore(path, WithNow(now))
	if _, err := loaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("Len = %d, want 2", loaded.Len())
	}
	first, _ := loaded.Get(0)
	if first.Title != "Buy groceries" || first.DueDate != "2024-12-02" || first.Tags[0] != "errands" {
		t.Errorf("first task = %+v", first)
	}
	second, _ := loaded.Get(1)
	if !second.Completed {
		t.Error("completed flag lost")
	}
}

func TestSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tasks.json")
	s := NewStore(path)
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("tasks file not written: %v", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "not json at all"},
		{"wrong version", `{"version": 9, "tasks": []}`},
		{"record with bad priority", `{"version": 1, "tasks": [{"title": "x", "priority": "urgent"}]}`},
		{"record with empty title", `{"version": 1, "tasks": [{"title": "", "priority": "low"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.json")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}

			s := NewStore(path)
			_, err := s.Load()
			if err == nil {
				t.Fatal("Load succeeded, want StorageError")
			}
			var serr *StorageError
			if !errors.As(err, &serr) {
				t.Errorf("error is %T, want *StorageError", err)
			}
		})
	}
}

func TestLoadNormalizesTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	data := `{"version": 1, "tasks": [{"title": "x", "priority": "low", "tags": ["Work", "work", "HOME"]}]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if _, err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got, _ := s.Get(0)
	if len(got.Tags) != 2 || got.Tags[0] != "work" || got.Tags[1] != "home" {
		t.Errorf("Tags = %v, want [work home]", got.Tags)
	}
}

func TestLoadMissingSchemaWarns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(path, []byte(`{"version": 1, "tasks": []}`), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, WithSchema(filepath.Join(dir, "missing.schema.json")))
	warnings, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "schema file not found") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestLoadSchemaValidation(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "tasks.schema.json")
	schema := `{
  "type": "object",
  "required": ["version", "tasks"],
  "properties": {
    "version": {"const": 1},
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "priority"],
        "properties": {
          "title": {"type": "string", "minLength": 1},
          "priority": {"enum": ["low", "medium", "high"]}
        }
      }
    }
  }
}`
	if err := os.WriteFile(schemaPath, []byte(schema), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("valid document passes", func(t *testing.T) {
		path := filepath.Join(dir, "ok.json")
		data := `{"version": 1, "tasks": [{"title": "x", "priority": "low"}]}`
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		s := NewStore(path, WithSchema(schemaPath))
		warnings, err := s.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(warnings) != 0 {
			t.Errorf("warnings = %v", warnings)
		}
	})

	t.Run("invalid document is a StorageError", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		data := `{"version": 1, "tasks": [{"priority": "low"}]}`
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		s := NewStore(path, WithSchema(schemaPath))
		_, err := s.Load()
		var serr *StorageError
		if !errors.As(err, &serr) {
			t.Fatalf("error is %T (%v), want *StorageError", err, err)
		}
	})
}
