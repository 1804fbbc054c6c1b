package ofs

import "testing"

func TestTranscoderIdentityOnZeroMap(t *testing.T) {
	var zero [256]byte
	tr, err := newTranscoder(zero)
	if err != nil {
		t.Fatalf("newTranscoder(zero map): %v", err)
	}
	if !tr.identity {
		t.Errorf("an all-zero encoding map must be treated as identity")
	}

	data := []byte("hello, omnifs")
	if got := tr.encodePayload(data); string(got) != string(data) {
		t.Errorf("encodePayload under identity = %q, want %q", got, data)
	}
}

func TestTranscoderRoundTrip(t *testing.T) {
	var m [256]byte
	for i := range m {
		m[i] = byte(255 - i)
	}
	tr, err := newTranscoder(m)
	if err != nil {
		t.Fatalf("newTranscoder: %v", err)
	}

	data := []byte{0, 1, 2, 3, 254, 255}
	enc := tr.encodePayload(data)
	dec := tr.decodePayload(enc)
	if string(dec) != string(data) {
		t.Errorf("round trip = %v, want %v", dec, data)
	}
}

func TestTranscoderRejectsNonPermutation(t *testing.T) {
	var m [256]byte
	m[0] = 5
	m[1] = 5 // duplicate target value, not a permutation
	if _, err := newTranscoder(m); err == nil {
		t.Errorf("expected an error for a non-permutation encoding map")
	}
}
