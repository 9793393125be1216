package router

import (
	"crypto/sha256"
	"encoding/hex"
)

// Module roles. A middleware module's role is RoleMiddleware; a rewrite
// module is referenced once per declared parameter, with the parameter name
// as the role.
const RoleMiddleware = "middleware"

// contentIDLen is the length of a content-hash id in hex characters.
const contentIDLen = 12

// contentID derives the stable identifier for a module reference. It is a
// function of the directory location and the module role only, never of file
// contents, so ids survive edits that don't move the module.
func contentID(location, role string) string {
	sum := sha256.Sum256([]byte(location + "\x00" + role))
	return hex.EncodeToString(sum[:])[:contentIDLen]
}
