package middleware

import "context"

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeySession ctxKey = "session"
	ctxKeyHTMX    ctxKey = "htmx"
	ctxKeyLocale  ctxKey = "locale_pref"
)

// LocalePreference is what the request says about the reader's language. The
// page host turns it into a locale once, at mount.
type LocalePreference struct {
	Explicit       string // ?hl=
	AcceptLanguage string
}

// WithLocalePreference stores the preference in context.
func WithLocalePreference(ctx context.Context, p LocalePreference) context.Context {
	return context.WithValue(ctx, ctxKeyLocale, p)
}

// LocalePreferenceFromContext returns the stored preference, if any.
func LocalePreferenceFromContext(ctx context.Context) LocalePreference {
	p, _ := ctx.Value(ctxKeyLocale).(LocalePreference)
	return p
}
