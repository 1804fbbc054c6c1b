package ofs

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

// Block device abstraction over the container's block region. Grounded on
// pkg/vdecompiler/io.go's partialIO: explicit offset bookkeeping and named
// sentinel errors instead of swallowing *os.PathError details.

import (
	"errors"
	"fmt"
	"os"
)

// ErrNullBlock is returned when a caller tries to read or write block 0,
// the chain-termination sentinel.
var ErrNullBlock = errors.New("ofs: block index 0 is not a valid read/write target")

// blockDevice reads and writes fixed-size blocks at a known base offset
// inside the container file.
type blockDevice struct {
	f           *os.File
	blocksBase  int64
	blockSize   int64
	payloadSize int64
}

func newBlockDevice(f *os.File, blocksBase int64, blockSize int64) *blockDevice {
	return &blockDevice{
		f:           f,
		blocksBase:  blocksBase,
		blockSize:   blockSize,
		payloadSize: blockSize - BlockNextSize,
	}
}

func (d *blockDevice) offset(idx uint32) (int64, error) {
	if idx == 0 {
		return 0, ErrNullBlock
	}
	return d.blocksBase + int64(idx-1)*d.blockSize, nil
}

// readBlock returns the block's forward pointer and its full payload
// (always payloadSize bytes; short writes are zero-padded on disk already).
func (d *blockDevice) readBlock(idx uint32) (next uint32, payload []byte, err error) {
	off, err := d.offset(idx)
	if err != nil {
		return 0, nil, err
	}

	buf := make([]byte, d.blockSize)
	_, err = d.f.ReadAt(buf, off)
	if err != nil {
		return 0, nil, fmt.Errorf("reading block %d: %w", idx, Err(IOError, "%v", err))
	}

	next = byteOrder.Uint32(buf[:BlockNextSize])
	payload = buf[BlockNextSize:]
	return next, payload, nil
}

// writeBlock writes next and payload (zero-padded up to payloadSize if
// shorter) at block idx.
func (d *blockDevice) writeBlock(idx uint32, next uint32, payload []byte) error {
	off, err := d.offset(idx)
	if err != nil {
		return err
	}
	if int64(len(payload)) > d.payloadSize {
		return fmt.Errorf("ofs: payload of %d bytes exceeds block capacity %d", len(payload), d.payloadSize)
	}

	buf := make([]byte, d.blockSize)
	byteOrder.PutUint32(buf[:BlockNextSize], next)
	copy(buf[BlockNextSize:], payload)

	_, err = d.f.WriteAt(buf, off)
	if err != nil {
		return fmt.Errorf("writing block %d: %w", idx, Err(IOError, "%v", err))
	}
	return nil
}

func (d *blockDevice) flush() error {
	if err := d.f.Sync(); err != nil {
		return fmt.Errorf("flushing container: %w", Err(IOError, "%v", err))
	}
	return nil
}
