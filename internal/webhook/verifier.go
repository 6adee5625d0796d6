// Package webhook authorizes deployment pushes: it checks the HMAC
// signature of an inbound payload and updates the working tree with git.
package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// ErrSignature is returned for every failed verification.  It is
// terminal: the request is unauthorized and must not be retried.
var ErrSignature = errors.New("webhook signature invalid")

// ErrUnsupportedAlgorithm is returned when the header names an algorithm
// outside the allow-list.  No digest is computed in that case.
var ErrUnsupportedAlgorithm = fmt.Errorf("%w: unsupported algorithm", ErrSignature)

// defaultAlgorithms is the closed set of digests a signature may use.
// Header names are matched exactly.
var defaultAlgorithms = map[string]func() hash.Hash{
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
	"blake3": func() hash.Hash { return blake3.New() },
}

// Verifier checks "<algo>=<hex>" signatures against a fixed allow-list.
type Verifier struct {
	algorithms map[string]func() hash.Hash
}

// NewVerifier returns a Verifier accepting sha1, sha256, sha512 and blake3.
func NewVerifier() *Verifier {
	return &Verifier{algorithms: defaultAlgorithms}
}

// Algorithms returns the accepted algorithm names, sorted.
func (v *Verifier) Algorithms() []string {
	names := make([]string, 0, len(v.algorithms))
	for name := range v.algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Verify checks header against the HMAC of body keyed with secret.  The
// hex digest in the header must equal the lower-case hex encoding of the
// computed MAC; the comparison runs in constant time.  On success it
// returns the algorithm name.
func (v *Verifier) Verify(header string, body, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: no secret configured", ErrSignature)
	}
	algo, digest, ok := strings.Cut(strings.TrimSpace(header), "=")
	if !ok || algo == "" || digest == "" {
		return "", fmt.Errorf("%w: malformed header", ErrSignature)
	}
	newHash, ok := v.algorithms[algo]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnsupportedAlgorithm, algo)
	}

	mac := hmac.New(newHash, secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(expected), []byte(digest)) != 1 {
		return "", fmt.Errorf("%w: digest mismatch", ErrSignature)
	}
	return algo, nil
}

// Valid is Verify reduced to a yes/no answer.
func (v *Verifier) Valid(header string, body, secret []byte) bool {
	_, err := v.Verify(header, body, secret)
	return err == nil
}

// Sign returns the header value for body under algo, for clients and
// tests.
func (v *Verifier) Sign(algo string, body, secret []byte) (string, error) {
	newHash, ok := v.algorithms[algo]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnsupportedAlgorithm, algo)
	}
	mac := hmac.New(newHash, secret)
	mac.Write(body)
	return algo + "=" + hex.EncodeToString(mac.Sum(nil)), nil
}
