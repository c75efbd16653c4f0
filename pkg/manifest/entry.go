package manifest

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// Kind classifies a manifest entry.
type Kind string

const (
	KindAux    Kind = "AUX"    // module data under files/
	KindEbuild Kind = "EBUILD" // build descriptor
	KindMisc   Kind = "MISC"   // metadata.xml
	KindDist   Kind = "DIST"   // distfile, written only by external tools
)

// Entry is one line of a Manifest.
type Entry struct {
	Kind    Kind
	Name    string
	Size    int64
	SHA512  string
	BLAKE2B string
}

// String formats e as a Manifest line without the trailing newline.
func (e Entry) String() string {
	return fmt.Sprintf("%s %s %d SHA512 %s BLAKE2B %s", e.Kind, e.Name, e.Size, e.SHA512, e.BLAKE2B)
}

// HashFile reads path once, computing both digests.
func HashFile(kind Kind, name, path string) (Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Entry{}, err
	}
	defer f.Close()

	b2, err := blake2b.New512(nil)
	if err != nil {
		return Entry{}, err
	}
	s512 := sha512.New()

	n, err := io.Copy(io.MultiWriter(s512, b2), f)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Kind:    kind,
		Name:    name,
		Size:    n,
		SHA512:  hex.EncodeToString(s512.Sum(nil)),
		BLAKE2B: hex.EncodeToString(b2.Sum(nil)),
	}, nil
}
