package binder

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// sourcePathValidator ensures the value looks like a book database path. The
// real readability check happens when the file is opened; this only catches
// payloads that were never going to work, like directories or .doc files.
func sourcePathValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}
	switch strings.ToLower(filepath.Ext(value)) {
	case ".accdb", ".mdb", ".bok":
		return true
	}
	return false
}
