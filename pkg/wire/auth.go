package wire

import (
	"crypto/sha256"
	"encoding/base64"
)

// AuthToken derives the Identify authentication string from the server
// password and the salt and challenge carried by Hello.
//
// Both digests are base64 encoded (standard alphabet, padded); the first
// encoding is hashed again together with the challenge.
func AuthToken(password, salt, challenge string) string {
	secret := sha256.Sum256([]byte(password + salt))
	secretB64 := base64.StdEncoding.EncodeToString(secret[:])

	token := sha256.Sum256([]byte(secretB64 + challenge))
	return base64.StdEncoding.EncodeToString(token[:])
}
