package aes_cbc

import (
	"io"

	"github.com/mxmauro/cryptoservice/models"
	"github.com/mxmauro/cryptoservice/util"
)

// -----------------------------------------------------------------------------

// The random IV envelope is: IV (one block) || CBC ciphertext. It stays block aligned.

func (c *aesCbcCipher) encryptWithRandomIV(plaintext []byte) ([]byte, error) {
	iv := make([]byte, BlockSize)
	if _, err := io.ReadFull(c.r, iv); err != nil {
		return nil, util.NewClassifiedError(models.ErrServiceError, err, "unable to generate iv")
	}

	ciphertext, err := c.encrypt(iv, plaintext)
	if err != nil {
		return nil, err
	}

	// Build the output.
	output := make([]byte, BlockSize+len(ciphertext))
	copy(output[:BlockSize], iv)
	copy(output[BlockSize:], ciphertext)

	// Done.
	return output, nil
}

func (c *aesCbcCipher) decryptWithRandomIV(envelope []byte) ([]byte, error) {
	if len(envelope) < 2*BlockSize || len(envelope)%BlockSize != 0 {
		return nil, util.NewClassifiedError(models.ErrInvalidParameters, nil, "ciphertext is not block aligned")
	}
	return c.decrypt(envelope[:BlockSize], envelope[BlockSize:])
}
