package languages

// PlainText is the language of files whose extension is not in the table
const PlainText = "plaintext"

// Language is one syntax-highlighting mode of the editor
type Language struct {
	// Identifier understood by the editor widget (e.g. "javascript")
	ID string `yaml:"id" json:"id"`

	DisplayName string   `yaml:"display_name" json:"display_name"`
	Extensions  []string `yaml:"extensions" json:"extensions"`

	// Starter body for new files created without content
	Template string `yaml:"template" json:"-"`
}

// languageFile is the layout of config/languages.yaml
type languageFile struct {
	Languages []Language `yaml:"languages"`
}
