// Package session generates the client-side identifiers that correlate a
// visit with the backend.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// suffixLen is the number of random characters after the timestamp.
const suffixLen = 9

// ID is the opaque session token sent with every backend request.
type ID string

// New returns a fresh session token of the form session_<unix-ms>_<random>.
func New() ID {
	return ID(newToken("session", time.Now()))
}

// NewLogoID returns a local identifier for an attached logo.
func NewLogoID() string {
	return newToken("logo", time.Now())
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// Valid reports whether id looks like a token this package produced or one
// the user supplied to resume a session. Only emptiness and path separators
// are rejected since the token is embedded in request paths.
func (id ID) Valid() bool {
	s := string(id)
	return s != "" && !strings.ContainsAny(s, "/?#")
}

func newToken(prefix string, now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), random[:suffixLen])
}
