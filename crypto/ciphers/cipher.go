package ciphers

import (
	"errors"
	"sort"
	"sync"

	"github.com/mxmauro/cryptoservice/crypto/ciphers/aes_cbc"
	"github.com/mxmauro/cryptoservice/crypto/ciphers/rsa_oaep"
	"github.com/mxmauro/cryptoservice/models"
)

// -----------------------------------------------------------------------------

const (
	EngineAesCbc  = "aes-cbc"
	EngineRsaOaep = "rsa-oaep"
)

// -----------------------------------------------------------------------------

type NewFromParametersFunc func(models.CipherParameters) (models.Cipher, error)

// -----------------------------------------------------------------------------

var enginesMtx = sync.RWMutex{}
var enginesList = map[string]NewFromParametersFunc{
	EngineAesCbc:  aes_cbc.NewFromParameters,
	EngineRsaOaep: rsa_oaep.NewFromParameters,
}

var ErrEngineNotSupported = errors.New("engine not supported")

// -----------------------------------------------------------------------------

// SupportedEngines returns a sorted list of supported encryption engines.
func SupportedEngines() []string {
	enginesMtx.RLock()
	defer enginesMtx.RUnlock()

	list := make([]string, 0, len(enginesList))
	for name := range enginesList {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// IsEngineSupported returns true if the given encryption engine is supported.
func IsEngineSupported(engine string) bool {
	enginesMtx.RLock()
	defer enginesMtx.RUnlock()

	_, ok := enginesList[engine]
	return ok
}

// RegisterEngine registers a custom encryption engine.
func RegisterEngine(engine string, newFromParameters NewFromParametersFunc) error {
	if len(engine) == 0 {
		return errors.New("engine name cannot be empty")
	}
	if newFromParameters == nil {
		return errors.New("newFromParameters cannot be nil")
	}

	enginesMtx.Lock()
	defer enginesMtx.Unlock()

	// Check if the engine is already registered
	if _, ok := enginesList[engine]; ok {
		return errors.New("engine already exists")
	}

	// Add the engine to the list.
	enginesList[engine] = newFromParameters

	// Done
	return nil
}

// NewCipher creates a new cipher object for the given encryption engine.
func NewCipher(engine string, params models.CipherParameters) (models.Cipher, error) {
	enginesMtx.RLock()
	newFromParameters, ok := enginesList[engine]
	enginesMtx.RUnlock()

	if !ok {
		return nil, ErrEngineNotSupported
	}
	return newFromParameters(params)
}
