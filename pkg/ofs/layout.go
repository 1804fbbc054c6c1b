package ofs

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

// On-disk layout constants and structures for the OMNIFS container format.
// Every structure here is written and read with encoding/binary in
// little-endian, field order, with no implicit padding -- the wire size of
// each struct must equal its constant below. See layout_test.go for the
// size assertions that enforce this at test time (the "build time assert"
// spec.md calls for; Go has no compile-time struct-size literals that could
// check it instead, since binary.Write packs fields densely and is the
// single serialization path).

import "encoding/binary"

// Magic is the fixed 8-byte signature at the start of every container.
const Magic = "OMNIFS01"

const (
	// HeaderSize is the fixed wire size of Header.
	HeaderSize = 512
	// UserInfoSize is the fixed wire size of UserInfo.
	UserInfoSize = 128
	// MetaEntrySize is the fixed wire size of MetaEntry.
	MetaEntrySize = 72
	// BlockNextSize is the size of a block's forward-pointer prefix.
	BlockNextSize = 4
	// MinBlockSize is the smallest block size implementations must accept.
	MinBlockSize = 128
	// MinHeaderSize is the smallest header region implementations must accept.
	MinHeaderSize = 512

	// nameSlotSize is the width of MetaEntry.Name, including the NUL pad.
	nameSlotSize = 12
	// MaxNameLen is the longest basename (excluding the NUL terminator)
	// that fits in a MetaEntry's name slot.
	MaxNameLen = nameSlotSize - 1
)

// reserved-region sub-offsets inside Header.Reserved, per spec.md §3.
const (
	reservedPrivateKeyOffset  = 0
	reservedPrivateKeySize    = 64
	reservedEncodingMapOffset = 64
	reservedEncodingMapSize   = 256
	reservedNextMetaOffset    = 320
	reservedNextMetaSize      = 8
)

// byteOrder is the single endianness used across the whole container.
var byteOrder = binary.LittleEndian

// Header is the 512-byte region at the start of every container file.
type Header struct {
	Magic           [8]byte
	FormatVersion   uint32
	TotalSize       uint64
	HeaderSize      uint64
	BlockSize       uint64
	StudentID       [32]byte
	SubmissionDate  [16]byte
	ConfigHash      [64]byte
	ConfigTimestamp uint64
	UserTableOffset uint32
	MaxUsers        uint32
	MetaTableOffset uint32 // spec.md: file_state_storage_offset
	BitmapOffset    uint32 // spec.md: change_log_offset
	Reserved        [340]byte
}

// EncodingMap returns the 256-byte payload-transcoding permutation stored
// in the header's reserved region. An all-zero map means identity.
func (h *Header) EncodingMap() [256]byte {
	var m [256]byte
	copy(m[:], h.Reserved[reservedEncodingMapOffset:reservedEncodingMapOffset+reservedEncodingMapSize])
	return m
}

// SetEncodingMap writes m into the header's reserved region.
func (h *Header) SetEncodingMap(m [256]byte) {
	copy(h.Reserved[reservedEncodingMapOffset:reservedEncodingMapOffset+reservedEncodingMapSize], m[:])
}

// NextMetaHint returns the persisted next-free-meta-slot search hint.
func (h *Header) NextMetaHint() uint64 {
	return byteOrder.Uint64(h.Reserved[reservedNextMetaOffset : reservedNextMetaOffset+reservedNextMetaSize])
}

// SetNextMetaHint persists the next-free-meta-slot search hint.
func (h *Header) SetNextMetaHint(v uint64) {
	byteOrder.PutUint64(h.Reserved[reservedNextMetaOffset:reservedNextMetaOffset+reservedNextMetaSize], v)
}

// UserRole distinguishes an administrator from a normal user.
type UserRole uint32

const (
	RoleNormal UserRole = 0
	RoleAdmin  UserRole = 1
)

// UserInfo is one 128-byte slot in the user table.
type UserInfo struct {
	Username     [32]byte
	PasswordHash [64]byte
	Role         uint32
	CreatedTime  uint64
	LastLogin    uint64
	IsActive     uint8
	Reserved     [11]byte
}

// EntryType distinguishes a file slot from a directory slot.
type EntryType uint8

const (
	TypeFile EntryType = 0
	TypeDir  EntryType = 1
)

// Inverted validity sentinels -- see spec.md §9: valid==0 means in-use,
// valid==1 means free. Keep these named constants at every call site
// instead of bare 0/1 literals to avoid an accidental inversion.
const (
	slotInUse uint8 = 0
	slotFree  uint8 = 1
)

// MetaEntry is one 72-byte slot in the metadata table, describing a single
// file or directory. Indices into the table are 1-based everywhere in this
// package, matching the on-disk format.
type MetaEntry struct {
	Valid        uint8
	Type         uint8
	Parent       uint32
	Name         [nameSlotSize]byte
	StartIndex   uint32
	TotalSize    uint64
	OwnerID      uint32
	Permissions  uint32
	CreatedTime  uint64
	ModifiedTime uint64
	Reserved     [18]byte
}

// InUse reports whether the slot currently describes a live file or
// directory (spec.md §9's inverted validity bit).
func (m *MetaEntry) InUse() bool { return m.Valid == slotInUse }

// IsDir reports whether the slot, if in use, is a directory.
func (m *MetaEntry) IsDir() bool { return EntryType(m.Type) == TypeDir }

// NameString returns the NUL-trimmed name held in the slot.
func (m *MetaEntry) NameString() string {
	return trimNUL(m.Name[:])
}

// SetName writes s into the slot's fixed name field. Callers must validate
// len(s) <= MaxNameLen first; SetName panics otherwise, since every caller
// in this package already checked length before reaching here.
func (m *MetaEntry) SetName(s string) {
	if len(s) > MaxNameLen {
		panic("ofs: name too long for slot")
	}
	var buf [nameSlotSize]byte
	copy(buf[:], s)
	m.Name = buf
}

func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
