package ofs

// Payload transcoder: applies an optional byte-permutation (the encoding
// map) to file payload bytes on write and its inverse on read. Grounded on
// the original's encode_data/decode_data (original_source/source/core/
// ofs_core.cpp), which treats an all-zero map as identity and otherwise
// indexes directly into the map / its precomputed inverse.

// transcoder holds a validated encoding map and its inverse permutation,
// computed once per mount rather than per operation.
type transcoder struct {
	identity bool
	encode   [256]byte
	decode   [256]byte
}

func newTranscoder(m [256]byte) (*transcoder, error) {
	if isZeroMap(m) {
		return &transcoder{identity: true}, nil
	}

	var seen [256]bool
	var inv [256]byte
	for i, v := range m {
		if seen[v] {
			return nil, Err(InvalidConfig, "encoding map is not a permutation of [0,255]")
		}
		seen[v] = true
		inv[v] = byte(i)
	}

	return &transcoder{encode: m, decode: inv}, nil
}

func isZeroMap(m [256]byte) bool {
	for _, b := range m {
		if b != 0 {
			return false
		}
	}
	return true
}

// encodePayload applies the forward permutation, or returns p unchanged
// (well, a copy) when the map is identity.
func (t *transcoder) encodePayload(p []byte) []byte {
	out := make([]byte, len(p))
	if t.identity {
		copy(out, p)
		return out
	}
	for i, b := range p {
		out[i] = t.encode[b]
	}
	return out
}

// decodePayload applies the inverse permutation.
func (t *transcoder) decodePayload(p []byte) []byte {
	out := make([]byte, len(p))
	if t.identity {
		copy(out, p)
		return out
	}
	for i, b := range p {
		out[i] = t.decode[b]
	}
	return out
}
