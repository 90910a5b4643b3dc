package file

import (
	"bytes"
	"crypto/sha1"
	"io"
	"os"

	"github.com/rjkroege/textcore/text"
)

// Hash is the SHA-1 of the content of a file.
type Hash [sha1.Size]byte

func (h *Hash) Set(b []byte) {
	if len(b) != len(h) {
		panic("internal error: wrong hash size")
	}
	copy(h[:], b)
}

func (h Hash) Eq(h1 Hash) bool {
	return bytes.Equal(h[:], h1[:])
}

func CalcHash(b []byte) Hash {
	return sha1.Sum(b)
}

func HashFor(filename string) (h Hash, err error) {
	fd, err := os.Open(filename)
	if err != nil {
		return h, err
	}
	defer fd.Close()

	hh := sha1.New()
	if _, err := io.Copy(hh, fd); err != nil {
		return h, err
	}
	h.Set(hh.Sum(nil))
	return
}

// HashText hashes the content of t without copying it.
func HashText(t *text.Text) (h Hash) {
	hh := sha1.New()
	t.WriteTo(hh)
	h.Set(hh.Sum(nil))
	return
}
