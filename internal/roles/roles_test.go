package roles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTable_UnknownRoleIsEmptyNotError(t *testing.T) {
	table := Default()

	p := table.Profile("underwater basket weaver")
	if len(p.Keywords) != 0 || len(p.ValueProps) != 0 || len(p.Hooks) != 0 {
		t.Errorf("unknown role should yield empty profile, got %+v", p)
	}
}

func TestTable_CaseInsensitiveLookup(t *testing.T) {
	table := Default()

	a := table.Profile("AI Engineer")
	b := table.Profile("ai engineer")
	if len(a.Keywords) == 0 {
		t.Fatal("expected keywords for built-in role")
	}
	if len(a.Keywords) != len(b.Keywords) {
		t.Errorf("lookup should ignore case")
	}
}

func TestProfile_Blob(t *testing.T) {
	p := Profile{
		Keywords:   []string{"llm", "rag"},
		ValueProps: []string{"shipped things"},
		Hooks:      []string{"agents"},
	}

	blob := p.Blob("AI Engineer")
	for _, want := range []string{"AI Engineer", "keywords: llm, rag", "hooks: agents", "value_props: shipped things"} {
		if !strings.Contains(blob, want) {
			t.Errorf("blob missing %q:\n%s", want, blob)
		}
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.yaml")
	content := `
AI Engineer:
  keywords: [llm, rag, pytorch]
  value_props: ["built evals"]
  hooks: ["retrieval quality"]
data engineer:
  keywords: [etl]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := table.Profile("ai engineer")
	if len(p.Keywords) != 3 {
		t.Errorf("expected 3 keywords, got %v", p.Keywords)
	}
	if table.Profile("data engineer").Keywords[0] != "etl" {
		t.Errorf("expected etl keyword for data engineer")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/roles.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
