package rsa_oaep

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"io"

	"github.com/mxmauro/cryptoservice/models"
	"github.com/mxmauro/cryptoservice/util"
)

// -----------------------------------------------------------------------------

const (
	// DefaultKeyBits is the modulus size expected when none is specified.
	DefaultKeyBits = 2048

	// DefaultHash is the OAEP hash function used when none is specified.
	DefaultHash = crypto.SHA512
)

// -----------------------------------------------------------------------------

// Options configure the RSA-OAEP cipher.
type Options struct {
	// Expected modulus size in bits. Defaults to DefaultKeyBits.
	KeyBits int

	// OAEP hash function. Defaults to DefaultHash.
	Hash crypto.Hash

	// An optional random number generator reader. If nil, crypto/rand.Reader is used.
	RandomGeneratorReader io.Reader
}

type rsaOaepCipher struct {
	r    io.Reader
	hash crypto.Hash

	publicKey  *rsa.PublicKey
	privateKey *rsa.PrivateKey // Nil on encrypt-only ciphers.
}

// -----------------------------------------------------------------------------

// NewFromPublicKey creates an encrypt-only RSA-OAEP cipher object from a PEM encoded public key.
// Both PKIX (BEGIN PUBLIC KEY) and PKCS#1 (BEGIN RSA PUBLIC KEY) encodings are accepted.
func NewFromPublicKey(publicKey string, opts Options) (models.Cipher, error) {
	der, err := decodePEM(publicKey, publicKeyMarkers)
	if err != nil {
		return nil, err
	}
	pub, err := parsePublicKey(der)
	if err != nil {
		return nil, err
	}
	return newCipher(pub, nil, opts)
}

// NewFromPrivateKey creates an RSA-OAEP cipher object from a PEM encoded private key. Both
// PKCS#1 (BEGIN RSA PRIVATE KEY) and PKCS#8 (BEGIN PRIVATE KEY) encodings are accepted. The
// object can also encrypt using the public half of the key.
func NewFromPrivateKey(privateKey string, opts Options) (models.Cipher, error) {
	der, err := decodePEM(privateKey, privateKeyMarkers)
	if err != nil {
		return nil, err
	}
	priv, err := parsePrivateKey(der)
	if err != nil {
		return nil, err
	}
	return newCipher(&priv.PublicKey, priv, opts)
}

// NewFromParameters creates a new RSA-OAEP cipher object from a generic parameters set. If both
// keys are given, they must belong to the same key pair.
func NewFromParameters(params models.CipherParameters) (models.Cipher, error) {
	opts := Options{
		KeyBits:               params.KeyBits,
		Hash:                  params.Hash,
		RandomGeneratorReader: params.RandomGeneratorReader,
	}

	switch {
	case len(params.PrivateKey) > 0:
		c, err := NewFromPrivateKey(params.PrivateKey, opts)
		if err != nil {
			return nil, err
		}
		if len(params.PublicKey) > 0 {
			var pub models.Cipher

			pub, err = NewFromPublicKey(params.PublicKey, opts)
			if err != nil {
				return nil, err
			}
			if !pub.(*rsaOaepCipher).publicKey.Equal(c.(*rsaOaepCipher).publicKey) {
				return nil, util.NewClassifiedError(models.ErrInvalidParameters, nil, "public and private keys do not match")
			}
		}
		return c, nil

	case len(params.PublicKey) > 0:
		return NewFromPublicKey(params.PublicKey, opts)
	}

	return nil, util.NewClassifiedError(models.ErrInvalidParameters, nil, "no rsa key was provided")
}

// KeyLen returns the modulus length in bytes. It is also the ciphertext length.
func (c *rsaOaepCipher) KeyLen() int {
	return c.publicKey.Size()
}

// MaxPlaintextLen returns the largest payload that can be encrypted with this key and hash.
func (c *rsaOaepCipher) MaxPlaintextLen() int {
	n := c.publicKey.Size() - 2*c.hash.Size() - 2
	if n < 0 {
		n = 0
	}
	return n
}

// Encrypt encrypts the given plaintext with the public key.
func (c *rsaOaepCipher) Encrypt(plaintext []byte) ([]byte, error) {
	if !c.isSupported() {
		return nil, util.NewClassifiedError(models.ErrInvalidOperation, nil, "encryption with the public key is not supported")
	}

	ciphertext, err := rsa.EncryptOAEP(c.hash.New(), c.r, c.publicKey, plaintext, nil)
	if err != nil {
		return nil, util.NewClassifiedError(models.ErrServiceError, err, "encryption failed")
	}

	// Done.
	return ciphertext, nil
}

// Decrypt decrypts the given ciphertext with the private key.
func (c *rsaOaepCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if c.privateKey == nil || !c.isSupported() {
		return nil, util.NewClassifiedError(models.ErrInvalidOperation, nil, "decryption with the private key is not supported")
	}

	plaintext, err := rsa.DecryptOAEP(c.hash.New(), nil, c.privateKey, ciphertext, nil)
	if err != nil {
		return nil, util.NewClassifiedError(models.ErrServiceError, err, "decryption failed")
	}

	// Done.
	return plaintext, nil
}

func (c *rsaOaepCipher) isSupported() bool {
	// OAEP needs room for two hashes and two extra bytes.
	return c.hash.Available() && c.publicKey.Size() >= 2*c.hash.Size()+2
}

// -----------------------------------------------------------------------------

func newCipher(pub *rsa.PublicKey, priv *rsa.PrivateKey, opts Options) (models.Cipher, error) {
	keyBits := opts.KeyBits
	if keyBits == 0 {
		keyBits = DefaultKeyBits
	}
	if pub.N.BitLen() != keyBits {
		return nil, util.NewClassifiedError(models.ErrInvalidParameters, nil, "unexpected rsa key size")
	}

	c := &rsaOaepCipher{
		r:          opts.RandomGeneratorReader,
		hash:       opts.Hash,
		publicKey:  pub,
		privateKey: priv,
	}
	if c.r == nil {
		c.r = rand.Reader
	}
	if c.hash == 0 {
		c.hash = DefaultHash
	}

	// Done.
	return c, nil
}
