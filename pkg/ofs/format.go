package ofs

// Format initializes a fresh container file, per spec.md §4.12. Grounded
// on pkg/ext4/super.go's init() -- both solve a small fixed point between
// the overhead regions and the number of data blocks they leave room for.

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"time"
)

const rootSlot uint32 = 1

// layoutOf computes the container's region offsets and block count for a
// validated Config, iterating the bitmap_bytes/num_blocks fixed point
// described in spec.md §4.12 step 2.
func layoutOf(cfg Config) (userTableOffset, metaTableOffset, bitmapOffset int64, numBlocks int64, bitmapBytesN int64) {
	userTableOffset = int64(cfg.HeaderSize)
	metaTableOffset = userTableOffset + int64(cfg.MaxUsers)*UserInfoSize
	fixedEnd := metaTableOffset + int64(cfg.MaxFiles)*MetaEntrySize

	bitmapBytesN = 0
	for {
		available := int64(cfg.TotalSize) - fixedEnd - bitmapBytesN
		if available < 0 {
			available = 0
		}
		nb := available / int64(cfg.BlockSize)
		nbBitmapBytes := bitmapBytes(nb)
		if nbBitmapBytes == bitmapBytesN {
			numBlocks = nb
			break
		}
		bitmapBytesN = nbBitmapBytes
	}

	bitmapOffset = fixedEnd
	return
}

// resolveBitmapLayout re-derives numBlocks and the bitmap's byte length
// from a mounted header's fixed bitmapOffset, iterating the same fixed
// point layoutOf used at format time.
func resolveBitmapLayout(totalSize uint64, bitmapOffset int64, blockSize uint64) (blocksOffset int64, numBlocks int64, bitmapBytesN int64) {
	bitmapBytesN = 0
	for {
		available := int64(totalSize) - bitmapOffset - bitmapBytesN
		if available < 0 {
			available = 0
		}
		nb := available / int64(blockSize)
		nbBitmapBytes := bitmapBytes(nb)
		if nbBitmapBytes == bitmapBytesN {
			numBlocks = nb
			break
		}
		bitmapBytesN = nbBitmapBytes
	}
	blocksOffset = bitmapOffset + bitmapBytesN
	return
}

// Format creates a new container file at path, per spec.md §4.12.
func Format(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	userTableOffset, metaTableOffset, bitmapOffset, numBlocks, bitmapBytesN := layoutOf(cfg)
	if numBlocks < 1 {
		return Err(InvalidConfig, "total_size leaves no room for any data blocks")
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating container %q: %w", path, Err(IOError, "%v", err))
	}
	defer f.Close()

	if err := f.Truncate(int64(cfg.TotalSize)); err != nil {
		return fmt.Errorf("sizing container %q: %w", path, Err(IOError, "%v", err))
	}

	hdr := Header{
		FormatVersion:   1,
		TotalSize:       cfg.TotalSize,
		HeaderSize:      cfg.HeaderSize,
		BlockSize:       cfg.BlockSize,
		ConfigTimestamp: uint64(time.Now().Unix()),
		UserTableOffset: uint32(userTableOffset),
		MaxUsers:        cfg.MaxUsers,
		MetaTableOffset: uint32(metaTableOffset),
		BitmapOffset:    uint32(bitmapOffset),
	}
	copy(hdr.Magic[:], Magic)
	hdr.SetNextMetaHint(2)

	if err := writeHeader(f, &hdr); err != nil {
		return err
	}

	// User table: slot 0 is the administrator, every other slot inactive.
	users := make([]UserInfo, cfg.MaxUsers)
	copy(users[0].Username[:], cfg.AdminUsername)
	copy(users[0].PasswordHash[:], fingerprint(cfg.AdminPassword))
	users[0].Role = uint32(RoleAdmin)
	users[0].CreatedTime = hdr.ConfigTimestamp
	users[0].IsActive = 1
	if err := writeUserTable(f, int64(userTableOffset), users); err != nil {
		return err
	}

	// Meta table: slot 1 (index 0) is the root directory; every other slot
	// free.
	meta := make([]MetaEntry, cfg.MaxFiles)
	meta[0] = MetaEntry{
		Valid:        slotInUse,
		Type:         uint8(TypeDir),
		Parent:       0,
		CreatedTime:  hdr.ConfigTimestamp,
		ModifiedTime: hdr.ConfigTimestamp,
		Permissions:  0o755,
	}
	meta[0].SetName("root")
	for i := 1; i < len(meta); i++ {
		meta[i].Valid = slotFree
	}
	if err := writeMetaTable(f, int64(metaTableOffset), meta); err != nil {
		return err
	}

	// Zero bitmap.
	if _, err := f.WriteAt(make([]byte, bitmapBytesN), int64(bitmapOffset)); err != nil {
		return fmt.Errorf("writing bitmap: %w", Err(IOError, "%v", err))
	}

	return f.Sync()
}

func writeHeader(f *os.File, hdr *Header) error {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, byteOrder, hdr); err != nil {
		return fmt.Errorf("encoding header: %w", Err(IOError, "%v", err))
	}
	if _, err := f.WriteAt(buf.Bytes(), 0); err != nil {
		return fmt.Errorf("writing header: %w", Err(IOError, "%v", err))
	}
	return nil
}

func writeUserTable(f *os.File, offset int64, users []UserInfo) error {
	buf := new(bytes.Buffer)
	for i := range users {
		if err := binary.Write(buf, byteOrder, &users[i]); err != nil {
			return fmt.Errorf("encoding user table: %w", Err(IOError, "%v", err))
		}
	}
	if _, err := f.WriteAt(buf.Bytes(), offset); err != nil {
		return fmt.Errorf("writing user table: %w", Err(IOError, "%v", err))
	}
	return nil
}

func writeMetaTable(f *os.File, offset int64, meta []MetaEntry) error {
	buf := new(bytes.Buffer)
	for i := range meta {
		if err := binary.Write(buf, byteOrder, &meta[i]); err != nil {
			return fmt.Errorf("encoding meta table: %w", Err(IOError, "%v", err))
		}
	}
	if _, err := f.WriteAt(buf.Bytes(), offset); err != nil {
		return fmt.Errorf("writing meta table: %w", Err(IOError, "%v", err))
	}
	return nil
}
