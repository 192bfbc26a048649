package util

// -----------------------------------------------------------------------------

// SafeZeroMem zeros the given memory.
func SafeZeroMem(v []byte) {
	vLen := len(v)
	if vLen > 0 {
		v[0] = 0
		for ofs := 1; ofs < vLen; ofs *= 2 {
			copy(v[ofs:], v[:ofs])
		}
	}
}

// SafeZeroMemArray zeros the given memory array.
func SafeZeroMemArray(v [][]byte) {
	for idx := range v {
		SafeZeroMem(v[idx])
	}
}

// CloneBytes returns a private copy of the given buffer. A nil buffer stays nil.
func CloneBytes(v []byte) []byte {
	if v == nil {
		return nil
	}
	c := make([]byte, len(v))
	copy(c, v)
	return c
}
