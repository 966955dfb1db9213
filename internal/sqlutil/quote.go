// Package sqlutil validates and quotes the SQL identifiers GoFresh
// interpolates into statements, such as the configurable records table.
package sqlutil

import (
	"fmt"
	"regexp"
	"strings"
)

// Quoted MySQL identifiers may contain almost any character, but every name
// GoFresh interpolates comes from configuration, so only alphanumerics and
// underscores are accepted.
var identifierPattern = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier reports whether name may be interpolated into SQL.
func IsValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// QuoteIdentifier wraps a MySQL identifier in backticks, doubling any
// backticks inside the name.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteIdentifierSafe validates the name before quoting it. Use it for
// identifiers that come from configuration rather than code.
func QuoteIdentifierSafe(name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return QuoteIdentifier(name), nil
}

// InvalidIdentifierError is returned for names that fail validation.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q: only letters, digits and underscores are allowed", e.Name)
}
