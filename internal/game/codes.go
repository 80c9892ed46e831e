package game

import "github.com/valyala/fastrand"

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength   = 5
)

// newRoomCode draws each letter independently, so repeats within a code are
// allowed. Collisions against live rooms are checked by the registry.
func newRoomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[fastrand.Uint32n(uint32(len(codeAlphabet)))]
	}
	return string(b)
}
