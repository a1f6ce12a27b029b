package permission

import (
	"os"
	"path/filepath"
	"testing"
)

func testDoc() Document {
	return Document{
		"acme": {
			"Blog":   {"editor", "admin"},
			"Social": {"editor"},
			"Video":  {},
		},
	}
}

func TestDocument_Accessible(t *testing.T) {
	doc := testDoc()

	if !doc.Accessible("acme", "Blog") {
		t.Error("expected Blog accessible for acme")
	}
	if doc.Accessible("acme", "Video") {
		t.Error("format with empty role list must not be accessible")
	}
	if doc.Accessible("acme", "Podcast") {
		t.Error("unknown format must not be accessible")
	}
	if doc.Accessible("globex", "Blog") {
		t.Error("unknown brand must not be accessible")
	}
}

func TestDocument_Formats(t *testing.T) {
	formats := testDoc().Formats("acme")
	if len(formats) != 2 {
		t.Fatalf("expected 2 accessible formats, got %v", formats)
	}
}

func TestRepository_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permissions.json")
	repo, err := NewRepository(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.Save(testDoc()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !loaded.Accessible("acme", "Blog") {
		t.Error("round-tripped document lost data")
	}
}

func TestRepository_LoadRejectsBrokenDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permissions.json")
	if err := os.WriteFile(path, []byte(`{"": {"Blog": ["editor"]}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	repo, _ := NewRepository(path)
	if _, err := repo.Load(); err == nil {
		t.Error("expected validation error for empty brand key")
	}
}

func TestRepository_RequiresPath(t *testing.T) {
	if _, err := NewRepository(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestHolder_Replace(t *testing.T) {
	h := NewHolder(testDoc())

	if !h.Accessible("acme", "Blog") {
		t.Fatal("expected initial document active")
	}

	h.Replace(Document{"acme": {"Podcast": {"admin"}}})

	if h.Accessible("acme", "Blog") {
		t.Error("expected old document replaced")
	}
	if !h.Accessible("acme", "Podcast") {
		t.Error("expected new document active")
	}
}

func TestHolder_SnapshotIsCopy(t *testing.T) {
	h := NewHolder(testDoc())
	snap := h.Snapshot()
	snap["acme"]["Blog"] = nil

	if !h.Accessible("acme", "Blog") {
		t.Error("mutating a snapshot must not affect the holder")
	}
}
