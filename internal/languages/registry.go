package languages

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry maps file extensions to editor languages and starter templates.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	languages   []Language
	byID        map[string]*Language
	byExtension map[string]string
}

// NewRegistry creates a registry from the embedded language table
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/languages.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read languages.yaml: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from a YAML language table
func Parse(data []byte) (*Registry, error) {
	var file languageFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal language table: %w", err)
	}

	r := &Registry{
		languages:   file.Languages,
		byID:        make(map[string]*Language, len(file.Languages)),
		byExtension: make(map[string]string),
	}

	for i := range r.languages {
		lang := &r.languages[i]
		if lang.ID == "" {
			return nil, fmt.Errorf("language #%d has no id", i)
		}
		if _, dup := r.byID[lang.ID]; dup {
			return nil, fmt.Errorf("duplicate language %q", lang.ID)
		}
		r.byID[lang.ID] = lang

		for _, ext := range lang.Extensions {
			ext = strings.ToLower(strings.TrimPrefix(ext, "."))
			if owner, dup := r.byExtension[ext]; dup {
				return nil, fmt.Errorf("extension %q claimed by both %q and %q", ext, owner, lang.ID)
			}
			r.byExtension[ext] = lang.ID
		}
	}

	return r, nil
}

// ForFilename resolves a language from the text after the last dot of name.
// ok is false when name has no extension or the extension is unknown.
func (r *Registry) ForFilename(name string) (string, bool) {
	ext := path.Ext(strings.TrimSpace(name))
	if len(ext) <= 1 {
		return "", false
	}
	id, ok := r.byExtension[strings.ToLower(ext[1:])]
	return id, ok
}

// Template returns the starter body for a language, empty when unknown
func (r *Registry) Template(language string) string {
	if lang, ok := r.byID[language]; ok {
		return lang.Template
	}
	return ""
}

// Get returns a language by id
func (r *Registry) Get(id string) (*Language, bool) {
	lang, ok := r.byID[id]
	return lang, ok
}

// List returns all languages (ordered as defined in YAML)
func (r *Registry) List() []Language {
	out := make([]Language, len(r.languages))
	copy(out, r.languages)
	return out
}
