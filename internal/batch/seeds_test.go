package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadSeedFile(t *testing.T) {
	content := `# heroes
a wandering knight haunted by a broken oath

a cheerful gravedigger who talks to crows
a wandering knight haunted by a broken oath
  # indented comment
a retired pirate queen running a noodle stand
`
	path := filepath.Join(t.TempDir(), "seeds.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	seeds, err := ReadSeedFile(path)
	if err != nil {
		t.Fatalf("ReadSeedFile failed: %v", err)
	}

	want := []string{
		"a wandering knight haunted by a broken oath",
		"a cheerful gravedigger who talks to crows",
		"a retired pirate queen running a noodle stand",
	}
	if !reflect.DeepEqual(seeds, want) {
		t.Errorf("Got %v, want %v", seeds, want)
	}
}

func TestReadSeedFile_Missing(t *testing.T) {
	if _, err := ReadSeedFile(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}
