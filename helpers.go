package cryptoservice

import (
	"encoding/base64"
	"errors"
	"unicode/utf8"

	"github.com/mxmauro/cryptoservice/models"
	"github.com/mxmauro/cryptoservice/util"
)

// -----------------------------------------------------------------------------

func (s *Service) report(op string, err error) error {
	fields := map[string]interface{}{
		"operation": op,
		"engine":    s.engine,
	}
	if errors.Is(err, ErrServiceError) {
		s.log.WithFields(fields).Errorf("cryptoservice: %v", err)
	} else {
		s.log.WithFields(fields).Debugf("cryptoservice: %v", err)
	}
	return err
}

func serialize(serializer models.Serializer, v any) ([]byte, error) {
	data, err := serializer.Marshal(v)
	if err != nil {
		return nil, util.NewClassifiedError(ErrInvalidOperation, err, "unable to serialize value")
	}
	if !utf8.Valid(data) {
		util.SafeZeroMem(data)
		return nil, util.NewClassifiedError(ErrInvalidOperation, nil, "serialized value is not valid text")
	}
	return data, nil
}

func encodeCiphertext(ciphertext []byte) string {
	return base64.StdEncoding.EncodeToString(ciphertext)
}

func decodeCiphertext(text string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, util.NewClassifiedError(ErrInvalidOperation, err, "ciphertext is not valid base64")
	}
	return ciphertext, nil
}
