package serializers

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/pretty"

	"github.com/mxmauro/cryptoservice/models"
)

// -----------------------------------------------------------------------------

// JSON encodes values as compact JSON. Struct fields keep their declaration order and HTML
// characters are not escaped.
type JSON struct{}

// CanonicalJSON encodes values as compact JSON with every object's keys sorted, so equal values
// always produce identical bytes.
type CanonicalJSON struct{}

// -----------------------------------------------------------------------------

var _ models.Serializer = JSON{}
var _ models.Serializer = CanonicalJSON{}

var sortKeysOptions = func() *pretty.Options {
	opts := *pretty.DefaultOptions
	opts.SortKeys = true
	return &opts
}()

// -----------------------------------------------------------------------------

// Marshal returns the JSON encoding of v.
func (JSON) Marshal(v any) ([]byte, error) {
	buf := bytes.Buffer{}

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	// Encode always appends a newline.
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// Unmarshal parses the JSON encoded data and stores the result in the value pointed to by v.
func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Marshal returns the canonical JSON encoding of v.
func (CanonicalJSON) Marshal(v any) ([]byte, error) {
	data, err := JSON{}.Marshal(v)
	if err != nil {
		return nil, err
	}
	return pretty.Ugly(pretty.PrettyOptions(data, sortKeysOptions)), nil
}

// Unmarshal parses the JSON encoded data and stores the result in the value pointed to by v.
func (CanonicalJSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
