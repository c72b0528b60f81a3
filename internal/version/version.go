// Package version tracks the versions of the pieces of behaviour that stored
// conversations depend on.
//
// Conversations persisted in Redis were produced under a particular system
// prompt and tool schema. Embedding those versions in every storage key means
// that bumping PromptLogic (or Tools) before a deploy makes old sessions
// unreachable, so every user lazily starts a fresh conversation seeded with
// the new instruction instead of continuing one built on the old rules.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComponentVersions holds the version strings for the logical parts of the
// application that shape a stored conversation. Bump by hand before deploying.
var ComponentVersions = struct {
	// Tools changes whenever a tool's name, schema or reply format changes.
	Tools string

	// PromptLogic changes whenever the seeded system instruction changes.
	PromptLogic string
}{
	Tools:       "v1.0",
	PromptLogic: "v1.0",
}

// GenerateVersionedKey builds a storage key for id under prefix.
//
// The id is hashed so raw session identifiers never appear in the key space.
//
// Example output: "conversation:a1b2c3d4...:tv1.0_pv1.0"
func GenerateVersionedKey(prefix, id string) string {
	hasher := sha256.New()
	hasher.Write([]byte(id))
	idHash := hex.EncodeToString(hasher.Sum(nil))

	versionString := fmt.Sprintf("t%s_p%s",
		ComponentVersions.Tools,
		ComponentVersions.PromptLogic,
	)

	return fmt.Sprintf("%s:%s:%s", prefix, idHash, versionString)
}
