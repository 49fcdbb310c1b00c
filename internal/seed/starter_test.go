package seed

import "testing"

func TestStarterFiles(t *testing.T) {
	files, err := StarterFiles()
	if err != nil {
		t.Fatalf("StarterFiles() failed: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("starter set is empty")
	}

	seen := make(map[string]bool)
	for _, f := range files {
		if seen[f.Name] {
			t.Errorf("duplicate starter file %q", f.Name)
		}
		seen[f.Name] = true
	}

	if !seen["index.html"] {
		t.Error("starter set should include index.html")
	}
	for _, f := range files {
		if f.Name == "styles.css" && f.Content != nil {
			t.Error("styles.css should fall back to the css template")
		}
	}
}
