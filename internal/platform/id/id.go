package id

import (
	"strings"

	"github.com/google/uuid"
)

// LocalPrefix marks identifiers minted while the remote store was
// unreachable. Rows carrying it exist only as offline shadow copies until
// the sync engine replays their create operations.
const LocalPrefix = "local-"

// Generator creates opaque identifiers.
type Generator interface {
	New() string
	NewLocal() string
}

type UUID struct{}

func (UUID) New() string {
	return uuid.NewString()
}

func (UUID) NewLocal() string {
	return LocalPrefix + uuid.NewString()
}

// IsLocal reports whether id was minted offline and has not been replaced
// by a server-assigned id yet.
func IsLocal(id string) bool {
	return strings.HasPrefix(id, LocalPrefix)
}
