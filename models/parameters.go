package models

import (
	"crypto"
	"io"
)

// -----------------------------------------------------------------------------

// CipherParameters holds the material an engine needs to build a cipher. Each engine only
// looks at the fields it understands.
type CipherParameters struct {
	// Symmetric key and initialization vector.
	Key []byte
	IV  []byte

	// RandomIV makes the symmetric engine draw a fresh IV on every call and prepend it to the
	// ciphertext. IV must be empty in that case.
	RandomIV bool

	// PEM (or bare base64 DER) encoded RSA keys. At least one of them must be set.
	PublicKey  string
	PrivateKey string

	// Expected RSA modulus size in bits and OAEP hash function. Zero values select the engine
	// defaults.
	KeyBits int
	Hash    crypto.Hash

	// An optional random number generator reader. If nil, crypto/rand.Reader is used.
	RandomGeneratorReader io.Reader
}
