package ernie

import (
	"crypto/sha256"
	"encoding/hex"
)

// RequestKey computes the result cache key for a request: the SHA-256 of the
// model, the request URL and the encoded payload. Credentials are not part of
// the key, so the same translation is shared across key rotations.
func RequestKey(req *Request) (string, error) {
	body, err := req.Payload.Encode()
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(req.Params.Model))
	h.Write([]byte{0})
	h.Write([]byte(req.Params.RequestURL))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), nil
}
