package ofs

import (
	"encoding/binary"
	"testing"
)

func TestStructSizes(t *testing.T) {
	cases := []struct {
		name string
		v    interface{}
		want int
	}{
		{"Header", Header{}, HeaderSize},
		{"UserInfo", UserInfo{}, UserInfoSize},
		{"MetaEntry", MetaEntry{}, MetaEntrySize},
	}
	for _, c := range cases {
		got := binary.Size(c.v)
		if got != c.want {
			t.Errorf("%s wire size = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestMetaEntryInvertedValidity(t *testing.T) {
	var e MetaEntry
	e.Valid = slotInUse
	if !e.InUse() {
		t.Errorf("slotInUse (0) should mean in-use")
	}
	e.Valid = slotFree
	if e.InUse() {
		t.Errorf("slotFree (1) should mean free")
	}
}

func TestSetNameRoundTrip(t *testing.T) {
	var e MetaEntry
	e.SetName("readme")
	if got := e.NameString(); got != "readme" {
		t.Errorf("NameString() = %q, want %q", got, "readme")
	}
}

func TestSetNameTooLongPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected SetName to panic on an over-long name")
		}
	}()
	var e MetaEntry
	e.SetName("this-name-is-far-too-long")
}

func TestEncodingMapRoundTrip(t *testing.T) {
	var h Header
	var m [256]byte
	for i := range m {
		m[i] = byte(255 - i)
	}
	h.SetEncodingMap(m)
	if got := h.EncodingMap(); got != m {
		t.Errorf("EncodingMap() round trip mismatch")
	}
}

func TestNextMetaHintRoundTrip(t *testing.T) {
	var h Header
	h.SetNextMetaHint(42)
	if got := h.NextMetaHint(); got != 42 {
		t.Errorf("NextMetaHint() = %d, want 42", got)
	}
}
