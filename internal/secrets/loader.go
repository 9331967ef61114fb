// Package secrets resolves credentials from files, inline values or fallbacks.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned when no source yields a value and there is no fallback.
var ErrNotConfigured = errors.New("secret is not configured")

// Source describes where a secret may come from. File wins over Value, and
// Fallback is used only when both are empty.
type Source struct {
	Name     string
	Value    string
	File     string
	Fallback string
}

// Secret is a resolved value together with where it came from.
type Secret struct {
	Value string
	// Origin is one of "file", "value" or "fallback".
	Origin string
}

func (s Secret) IsFallback() bool {
	return s.Origin == "fallback"
}

// Load resolves src. The value is always trimmed. A configured but empty file
// is an error even when a fallback exists.
func Load(src Source) (Secret, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return Secret{}, fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		value := strings.TrimSpace(string(data))
		if value == "" {
			return Secret{}, fmt.Errorf("%s file %q is empty", name, file)
		}
		return Secret{Value: value, Origin: "file"}, nil
	}

	if value := strings.TrimSpace(src.Value); value != "" {
		return Secret{Value: value, Origin: "value"}, nil
	}

	if fallback := strings.TrimSpace(src.Fallback); fallback != "" {
		return Secret{Value: fallback, Origin: "fallback"}, nil
	}

	return Secret{}, fmt.Errorf("%s: %w", name, ErrNotConfigured)
}
