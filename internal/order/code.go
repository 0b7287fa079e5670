package order

import "crypto/rand"

const (
	codePrefix   = "MD"
	codeLength   = 10
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewCode generates a human-facing order code: a fixed prefix plus ten
// random upper-alphanumeric characters. Uniqueness is enforced by the
// store's unique index; callers retry on collision.
func NewCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	out := make([]byte, 0, len(codePrefix)+codeLength)
	out = append(out, codePrefix...)
	for _, b := range buf {
		out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
	}
	return string(out)
}
