package section

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSection matches every *UnknownSectionError.
	ErrUnknownSection = errors.New("section: unknown section")
	// ErrUnknownLocale matches every *UnknownLocaleError.
	ErrUnknownLocale = errors.New("section: unknown locale")
	// ErrInvalidRegistry is returned by New for empty, blank or duplicate ids.
	ErrInvalidRegistry = errors.New("section: invalid registry")
)

// UnknownSectionError reports an id that is not registered.
type UnknownSectionError struct {
	ID string
}

func (e *UnknownSectionError) Error() string {
	return fmt.Sprintf("section: unknown section %q", e.ID)
}

// Is lets errors.Is(err, ErrUnknownSection) match.
func (e *UnknownSectionError) Is(target error) bool { return target == ErrUnknownSection }

// UnknownLocaleError reports a locale outside the supported set.
type UnknownLocaleError struct {
	Locale string
}

func (e *UnknownLocaleError) Error() string {
	return fmt.Sprintf("section: unsupported locale %q", e.Locale)
}

// Is lets errors.Is(err, ErrUnknownLocale) match.
func (e *UnknownLocaleError) Is(target error) bool { return target == ErrUnknownLocale }
