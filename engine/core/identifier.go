package core

import "github.com/google/uuid"

// UniqueID identifies a GPU-owning object (primitives, textures) in logs.
type UniqueID string

// uuid text minus its first block: "-xxxx-xxxx-xxxx-xxxxxxxxxxxx".
const uuidTailLen = 28

// NewUniqueID returns a random identifier. The prefix makes logs greppable.
func NewUniqueID(prefix string) UniqueID {
	return UniqueID(prefix + "-" + uuid.NewString())
}

func (id UniqueID) String() string {
	return string(id)
}

// Short returns the prefix and the first block of the uuid.
func (id UniqueID) Short() string {
	s := string(id)
	if len(s) < 36 {
		return s
	}
	return s[:len(s)-uuidTailLen]
}
