package extract

import (
	"github.com/sirupsen/logrus"
)

// bestEffort runs fn and returns def on failure, logging the error.
func bestEffort[T any](log logrus.FieldLogger, what string, def T, fn func() (T, error)) T {
	v, err := fn()
	if err != nil {
		log.WithError(err).Warnf("%s failed", what)
		return def
	}
	return v
}

// firstNonEmpty returns the first attempt yielding a non-empty string.
// Later attempts are not evaluated.
func firstNonEmpty(attempts ...func() string) string {
	for _, attempt := range attempts {
		if v := attempt(); v != "" {
			return v
		}
	}
	return ""
}

// firstNonNil is firstNonEmpty for optional values.
func firstNonNil[T any](attempts ...func() *T) *T {
	for _, attempt := range attempts {
		if v := attempt(); v != nil {
			return v
		}
	}
	return nil
}
