package locale

import "fmt"

// NotFoundError is returned when no candidate in the fallback chain
// resolves to an existing locale directory.
type NotFoundError struct {
	Locale string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("locale not found: %s", e.Locale)
}

// KeyNotFoundError is returned when a translation key does not exist
// in the resolved locale data.
type KeyNotFoundError struct {
	Key    string
	Locale string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("i18n key %q not found in locale %q", e.Key, e.Locale)
}
