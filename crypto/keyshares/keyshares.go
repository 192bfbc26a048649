// Package keyshares splits symmetric key material into Shamir shares so no single holder owns the
// whole key, and combines them back when an engine is built.
package keyshares

import (
	"errors"

	bstd "github.com/deneonet/benc/std"
	"github.com/mxmauro/shamir"

	"github.com/mxmauro/cryptoservice/models"
	"github.com/mxmauro/cryptoservice/util"
)

// -----------------------------------------------------------------------------

const (
	shareVersion = 1

	// MaxShares is the maximum number of shares a secret can be split into.
	MaxShares = 255
)

// -----------------------------------------------------------------------------

var (
	// ErrMoreSharesRequired is returned by Combine when fewer shares than the threshold are given.
	ErrMoreSharesRequired = errors.New("more shares required")

	ErrInvalidShare = errors.New("invalid share")
)

// -----------------------------------------------------------------------------

type share struct {
	threshold uint8
	data      []byte
}

// -----------------------------------------------------------------------------

// Split divides the secret into the given number of shares, any threshold of them being enough to
// rebuild it. A single share holds the secret itself.
func Split(secret []byte, shares int, threshold int) ([][]byte, error) {
	var parts [][]byte
	var err error

	if len(secret) == 0 {
		return nil, util.NewClassifiedError(models.ErrInvalidParameters, nil, "secret cannot be empty")
	}
	if shares < 1 || shares > MaxShares {
		return nil, util.NewClassifiedError(models.ErrInvalidParameters, nil, "invalid number of shares")
	}
	if threshold < 1 || threshold > shares || (shares > 1 && threshold < 2) {
		return nil, util.NewClassifiedError(models.ErrInvalidParameters, nil, "invalid threshold")
	}

	if shares == 1 {
		parts = [][]byte{util.CloneBytes(secret)}
	} else {
		parts, err = shamir.Split(secret, shares, threshold)
		if err != nil {
			return nil, util.NewClassifiedError(models.ErrServiceError, err, "unable to split secret")
		}
	}
	defer util.SafeZeroMemArray(parts)

	// Frame every part with the threshold so Combine can tell when shares are missing.
	encoded := make([][]byte, len(parts))
	for idx, part := range parts {
		s := share{
			threshold: uint8(threshold),
			data:      part,
		}
		encoded[idx] = s.Serialize()
	}

	// Done
	return encoded, nil
}

// Combine rebuilds a secret from shares created by Split. The caller should zero the returned
// buffer once it is no longer needed.
func Combine(encoded [][]byte) ([]byte, error) {
	if len(encoded) == 0 {
		return nil, util.NewClassifiedError(models.ErrInvalidParameters, ErrMoreSharesRequired, "no shares provided")
	}

	parts := make([][]byte, 0, len(encoded))
	defer func() {
		util.SafeZeroMemArray(parts)
	}()

	threshold := uint8(0)
	for _, buf := range encoded {
		s, err := deserializeShare(buf)
		if err != nil {
			return nil, util.NewClassifiedError(models.ErrInvalidParameters, err, "unable to decode share")
		}
		if threshold == 0 {
			threshold = s.threshold
		} else if threshold != s.threshold {
			return nil, util.NewClassifiedError(models.ErrInvalidParameters, ErrInvalidShare, "shares belong to different secrets")
		}
		parts = append(parts, s.data)
	}

	if len(parts) < int(threshold) {
		return nil, util.NewClassifiedError(models.ErrInvalidParameters, ErrMoreSharesRequired, "not enough shares")
	}

	if threshold == 1 {
		return util.CloneBytes(parts[0]), nil
	}

	secret, err := shamir.Combine(parts)
	if err != nil {
		return nil, util.NewClassifiedError(models.ErrInvalidParameters, err, "unable to combine shares")
	}

	// Done
	return secret, nil
}

// -----------------------------------------------------------------------------

func deserializeShare(buf []byte) (share, error) {
	var s share

	if len(buf) <= bstd.SizeUint16() {
		return share{}, ErrInvalidShare
	}

	ofs, version, err := bstd.UnmarshalUint16(0, buf)
	if err != nil {
		return share{}, ErrInvalidShare
	}
	switch version {
	case 1:
		ofs, s.threshold, err = bstd.UnmarshalByte(ofs, buf)
		if err != nil || s.threshold == 0 {
			return share{}, ErrInvalidShare
		}
		ofs, s.data, err = bstd.UnmarshalBytesCopied(ofs, buf)
		if err != nil || len(s.data) == 0 {
			return share{}, ErrInvalidShare
		}

	default:
		return share{}, errors.New("unsupported share version")
	}

	// Check if we reached the end of the buffer.
	if ofs != len(buf) {
		return share{}, ErrInvalidShare
	}

	// Done
	return s, nil
}

func (s *share) Serialize() []byte {
	bufSize := bstd.SizeUint16() + bstd.SizeByte() + bstd.SizeBytes(s.data)
	buf := make([]byte, bufSize)

	ofs := bstd.MarshalUint16(0, buf, shareVersion)
	ofs = bstd.MarshalByte(ofs, buf, s.threshold)
	_ = bstd.MarshalBytes(ofs, buf, s.data)

	// Done
	return buf
}
