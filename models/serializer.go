package models

// -----------------------------------------------------------------------------

// Serializer converts values to and from the byte encoding that gets encrypted.
type Serializer interface {
	// Marshal returns the encoding of v.
	Marshal(v any) ([]byte, error)
	// Unmarshal parses the encoded data and stores the result in the value pointed to by v.
	Unmarshal(data []byte, v any) error
}
