// Package seed holds the default content of a fresh file system.
package seed

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/starter.yaml
var dataFiles embed.FS

// StarterFile is one default document. A nil Content means "use the
// language template".
type StarterFile struct {
	Name    string  `yaml:"name"`
	Content *string `yaml:"content"`
}

type starterSet struct {
	Files []StarterFile `yaml:"files"`
}

// StarterFiles returns the embedded default file set in declaration order
func StarterFiles() ([]StarterFile, error) {
	data, err := dataFiles.ReadFile("data/starter.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read starter.yaml: %w", err)
	}

	var set starterSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to unmarshal starter.yaml: %w", err)
	}

	for i, f := range set.Files {
		if f.Name == "" {
			return nil, fmt.Errorf("starter file #%d has no name", i)
		}
	}

	return set.Files, nil
}
