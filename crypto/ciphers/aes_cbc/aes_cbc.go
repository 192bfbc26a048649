package aes_cbc

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"io"

	"github.com/mxmauro/cryptoservice/models"
	"github.com/mxmauro/cryptoservice/util"
)

// -----------------------------------------------------------------------------

const (
	// BlockSize is the AES block size in bytes. The IV must have the same length.
	BlockSize = aes.BlockSize
)

// -----------------------------------------------------------------------------

// aesCbcCipher encrypts with AES in CBC mode using PKCS#7 padding. The key and IV are bound at
// construction and never modified, so a single instance can be shared across goroutines.
//
// NOTE: The default mode reuses the same IV for every message. Equal plaintext prefixes produce
// equal ciphertext prefixes. Use NewWithRandomIV when the wire format can carry the IV.
type aesCbcCipher struct {
	keyLen int
	block  cipher.Block
	iv     []byte

	r io.Reader // Only set in random IV mode.
}

var (
	errOutputBufferTooSmall = errors.New("output buffer too small")
	errBadPadding           = errors.New("bad padding")
)

// -----------------------------------------------------------------------------

// NewFromKey creates a new AES-CBC cipher object bound to the given key and IV. The key must be
// 16, 24 or 32 bytes long (AES-128, AES-192 or AES-256) and the IV must be 16 bytes long.
func NewFromKey(key []byte, iv []byte) (models.Cipher, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if len(iv) != BlockSize {
		return nil, util.NewClassifiedError(models.ErrInvalidParameters, nil, "iv must be 16 bytes long")
	}

	c, err := newCipher(key)
	if err != nil {
		return nil, err
	}
	c.iv = util.CloneBytes(iv)

	// Done.
	return c, nil
}

// NewWithRandomIV creates a new AES-CBC cipher object that draws a fresh IV from r on every
// encryption and prepends it to the ciphertext. If r is nil, crypto/rand.Reader is used.
func NewWithRandomIV(key []byte, r io.Reader) (models.Cipher, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if r == nil {
		r = rand.Reader
	}

	c, err := newCipher(key)
	if err != nil {
		return nil, err
	}
	c.r = r

	// Done.
	return c, nil
}

// NewFromParameters creates a new AES-CBC cipher object from a generic parameters set.
func NewFromParameters(params models.CipherParameters) (models.Cipher, error) {
	if params.RandomIV {
		if len(params.IV) > 0 {
			return nil, util.NewClassifiedError(models.ErrInvalidParameters, nil, "iv cannot be set in random iv mode")
		}
		return NewWithRandomIV(params.Key, params.RandomGeneratorReader)
	}
	return NewFromKey(params.Key, params.IV)
}

// KeyLen returns the length of the key used by the AES-CBC cipher.
func (c *aesCbcCipher) KeyLen() int {
	return c.keyLen
}

// Encrypt encrypts the given plaintext. The output length is always a positive multiple of the
// block size and at least one byte longer than the plaintext.
func (c *aesCbcCipher) Encrypt(plaintext []byte) ([]byte, error) {
	if c.r != nil {
		return c.encryptWithRandomIV(plaintext)
	}
	return c.encrypt(c.iv, plaintext)
}

// Decrypt decrypts the given ciphertext. Its length must be a non-zero multiple of the block
// size.
func (c *aesCbcCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if c.r != nil {
		return c.decryptWithRandomIV(ciphertext)
	}
	return c.decrypt(c.iv, ciphertext)
}

func (c *aesCbcCipher) encrypt(iv []byte, plaintext []byte) ([]byte, error) {
	// PKCS#7 always adds between 1 and BlockSize bytes, even when the input is already aligned.
	ciphertext := make([]byte, len(plaintext)+BlockSize)

	ciphertextLen, err := c.cryptEncrypt(iv, plaintext, ciphertext)
	if err != nil {
		return nil, util.NewClassifiedError(models.ErrServiceError, err, "encryption failed")
	}
	if ciphertextLen <= 0 || ciphertextLen > len(ciphertext) || ciphertextLen%BlockSize != 0 {
		return nil, util.NewClassifiedError(models.ErrServiceError, nil, "unexpected ciphertext length")
	}

	// Trim unused bytes.
	return ciphertext[:ciphertextLen], nil
}

func (c *aesCbcCipher) decrypt(iv []byte, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, util.NewClassifiedError(models.ErrInvalidParameters, nil, "ciphertext is not block aligned")
	}

	// Removing the padding can only shrink the data.
	plaintext := make([]byte, len(ciphertext))

	plaintextLen, err := c.cryptDecrypt(iv, ciphertext, plaintext)
	if err != nil {
		util.SafeZeroMem(plaintext)
		return nil, util.NewClassifiedError(models.ErrServiceError, err, "decryption failed")
	}
	if plaintextLen < 0 || plaintextLen > len(plaintext) {
		util.SafeZeroMem(plaintext)
		return nil, util.NewClassifiedError(models.ErrServiceError, nil, "unexpected plaintext length")
	}

	// Trim unused bytes.
	return plaintext[:plaintextLen], nil
}

// cryptEncrypt pads and encrypts src into dst and returns the number of bytes written.
func (c *aesCbcCipher) cryptEncrypt(iv []byte, src []byte, dst []byte) (int, error) {
	padLen := BlockSize - len(src)%BlockSize
	n := len(src) + padLen
	if n > len(dst) {
		return 0, errOutputBufferTooSmall
	}

	copy(dst, src)
	for idx := len(src); idx < n; idx++ {
		dst[idx] = byte(padLen)
	}

	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(dst[:n], dst[:n])
	return n, nil
}

// cryptDecrypt decrypts src into dst, strips the padding and returns the plaintext length.
func (c *aesCbcCipher) cryptDecrypt(iv []byte, src []byte, dst []byte) (int, error) {
	n := len(src)
	if n > len(dst) {
		return 0, errOutputBufferTooSmall
	}

	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(dst[:n], src)

	padLen, ok := pkcs7PaddingLen(dst[:n])
	if !ok {
		return 0, errBadPadding
	}
	return n - padLen, nil
}

// -----------------------------------------------------------------------------

func validateKey(key []byte) error {
	switch len(key) {
	case 16, 24, 32:
		return nil
	}
	return util.NewClassifiedError(models.ErrInvalidParameters, nil, "key must be 16, 24 or 32 bytes long")
}

func newCipher(key []byte) (*aesCbcCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, util.NewClassifiedError(models.ErrInvalidParameters, err, "failed to create cipher")
	}
	return &aesCbcCipher{
		keyLen: len(key),
		block:  block,
	}, nil
}

// pkcs7PaddingLen validates the trailing padding of a decrypted buffer in constant time with
// respect to the padding contents and returns its length.
func pkcs7PaddingLen(buf []byte) (int, bool) {
	bufLen := len(buf)
	if bufLen < BlockSize {
		return 0, false
	}

	padLen := buf[bufLen-1]
	good := subtle.ConstantTimeLessOrEq(1, int(padLen)) & subtle.ConstantTimeLessOrEq(int(padLen), BlockSize)

	lastBlock := buf[bufLen-BlockSize:]
	for idx := 0; idx < BlockSize; idx++ {
		// Only the trailing padLen bytes must match.
		inPadding := subtle.ConstantTimeLessOrEq(BlockSize-idx, int(padLen))
		match := subtle.ConstantTimeByteEq(lastBlock[idx], padLen)
		good &= match | (inPadding ^ 1)
	}

	if good != 1 {
		return 0, false
	}
	return int(padLen), true
}
