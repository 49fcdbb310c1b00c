package docsystem

import (
	"fmt"
	"regexp"
	"strings"

	"storm/internal/config"
	"storm/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var noSlashes = regexp.MustCompile(`^[^/]+$`)

// validateFileName trims and validates a file name
func validateFileName(name string) (string, error) {
	return validateName(name, "file", config.MaxFileNameLength)
}

// validateFolderName trims and validates a folder name
func validateFolderName(name string) (string, error) {
	return validateName(name, "folder", config.MaxFolderNameLength)
}

func validateName(name, kind string, maxLength int) (string, error) {
	name = strings.TrimSpace(name)

	err := validation.Validate(name,
		validation.Required.Error(kind+" name is required"),
		validation.RuneLength(1, maxLength),
		validation.Match(noSlashes).Error(kind+" name cannot contain slashes"),
		validation.NotIn(".", "..").Error(kind+" name cannot be . or .."),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return name, nil
}
