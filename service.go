package cryptoservice

import (
	log "github.com/sirupsen/logrus"

	"github.com/mxmauro/cryptoservice/logger"
	"github.com/mxmauro/cryptoservice/models"
	"github.com/mxmauro/cryptoservice/serializers"
	"github.com/mxmauro/cryptoservice/util"
)

// -----------------------------------------------------------------------------

// Service serializes values, encrypts them with any cipher engine and transports them as base64
// text. It keeps no state between calls and can be shared across goroutines.
type Service struct {
	cipher             models.Cipher
	serializer         models.Serializer
	sequenceSerializer models.Serializer
	engine             string
	log                logger.Logger
}

// Options configure the Service parameters.
type Options struct {
	// The cipher engine that encrypts the serialized values. Required.
	Cipher models.Cipher

	// Engine name, only used in log messages.
	Engine string

	// Serializer used by Encrypt and Decrypt. Defaults to serializers.JSON.
	Serializer models.Serializer

	// Serializer used by EncryptSequence. It must produce deterministic output. Defaults to
	// serializers.CanonicalJSON.
	SequenceSerializer models.Serializer

	// An optional logger. If nil, an info level logger writing to stderr is used.
	Logger logger.Logger
}

// -----------------------------------------------------------------------------

// New creates a new encryption service.
func New(opts Options) (*Service, error) {
	if opts.Cipher == nil {
		return nil, util.NewClassifiedError(ErrInvalidParameters, nil, "a cipher is required")
	}

	s := &Service{
		cipher:             opts.Cipher,
		serializer:         opts.Serializer,
		sequenceSerializer: opts.SequenceSerializer,
		engine:             opts.Engine,
		log:                opts.Logger,
	}
	if s.serializer == nil {
		s.serializer = serializers.JSON{}
	}
	if s.sequenceSerializer == nil {
		s.sequenceSerializer = serializers.CanonicalJSON{}
	}
	if len(s.engine) == 0 {
		s.engine = "custom"
	}
	if s.log == nil {
		s.log = logger.NewLogger(uint32(log.InfoLevel))
	}

	// Done
	return s, nil
}

// Cipher returns the cipher engine used by the service.
func (s *Service) Cipher() models.Cipher {
	return s.cipher
}

// EncryptBytes encrypts raw bytes and returns the base64 encoded ciphertext.
func (s *Service) EncryptBytes(plaintext []byte) (string, error) {
	ciphertext, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return "", s.report("encrypt", err)
	}
	return encodeCiphertext(ciphertext), nil
}

// DecryptBytes decodes and decrypts a base64 encoded ciphertext.
func (s *Service) DecryptBytes(ciphertext string) ([]byte, error) {
	encryptedData, err := decodeCiphertext(ciphertext)
	if err != nil {
		return nil, s.report("decrypt", err)
	}
	plaintext, err := s.cipher.Decrypt(encryptedData)
	if err != nil {
		return nil, s.report("decrypt", err)
	}
	return plaintext, nil
}

// Encrypt serializes the value, encrypts it and returns the base64 encoded ciphertext.
func Encrypt[T any](s *Service, value T) (string, error) {
	return s.encryptValue("encrypt", s.serializer, value)
}

// EncryptSequence serializes the whole ordered sequence as a single unit with object keys sorted,
// so equal inputs always produce the same ciphertext under the same key and IV. Decrypt it with
// Decrypt[[]T].
func EncryptSequence[T any](s *Service, values []T) (string, error) {
	if values == nil {
		values = []T{}
	}
	return s.encryptValue("encrypt-sequence", s.sequenceSerializer, values)
}

// Decrypt decodes and decrypts the ciphertext and deserializes the plaintext into a T.
func Decrypt[T any](s *Service, ciphertext string) (T, error) {
	var value T

	plaintext, err := s.DecryptBytes(ciphertext)
	if err != nil {
		return value, err
	}
	defer util.SafeZeroMem(plaintext)

	if err = s.serializer.Unmarshal(plaintext, &value); err != nil {
		var zero T

		err = util.NewClassifiedError(ErrInvalidOperation, err, "unable to deserialize value")
		return zero, s.report("decrypt", err)
	}

	// Done
	return value, nil
}

func (s *Service) encryptValue(op string, serializer models.Serializer, value any) (string, error) {
	plaintext, err := serialize(serializer, value)
	if err != nil {
		return "", s.report(op, err)
	}
	defer util.SafeZeroMem(plaintext)

	ciphertext, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return "", s.report(op, err)
	}
	return encodeCiphertext(ciphertext), nil
}
