package ofs

// Mount / init (spec.md §4.13). Grounded on pkg/vdecompiler.Open's
// open-and-verify-magic pattern, generalized from read-only introspection
// to a read-write mounted instance with derived in-memory state.

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// Instance is a mounted OMNIFS container. All of its fields are owned by
// the mount routine and shared with sessions by reference, rather than
// sessions holding a back-pointer into the instance (spec.md §9).
type Instance struct {
	path   string
	file   *os.File
	header Header

	dev   *blockDevice
	bmap  *bitmap
	meta  *metaTable
	users *userTable
	trans *transcoder

	pathIndex map[string]uint32
	sessions  *sessionRegistry

	numBlocks int64

	log Logger
}

// Logger is the narrow logging surface the core calls through, satisfied
// by pkg/ofslog.CLI. Left nil it is a no-op, so pkg/ofs has no hard
// dependency on any particular logger implementation.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// Init mounts the container at path, formatting it first if it doesn't
// contain a valid root directory yet (spec.md §4.13).
func Init(path string, cfg Config, log Logger) (*Instance, error) {
	if log == nil {
		log = nopLogger{}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Infof("container %q does not exist, formatting", path)
		if err := Format(path, cfg); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening container %q: %w", path, Err(IOError, "%v", err))
	}

	inst, err := mountFile(f, log)
	if err != nil {
		f.Close()
		return nil, err
	}

	if !inst.meta.at(rootSlot).InUse() {
		log.Infof("container %q has no valid root, reformatting", path)
		f.Close()
		if err := Format(path, cfg); err != nil {
			return nil, err
		}
		f, err = os.OpenFile(path, os.O_RDWR, 0o644)
		if err != nil {
			return nil, fmt.Errorf("reopening container %q: %w", path, Err(IOError, "%v", err))
		}
		inst, err = mountFile(f, log)
		if err != nil {
			f.Close()
			return nil, err
		}
	}

	return inst, nil
}

func mountFile(f *os.File, log Logger) (*Instance, error) {
	var hdr Header
	buf := make([]byte, HeaderSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("reading header: %w", Err(IOError, "%v", err))
	}
	if err := binary.Read(bytes.NewReader(buf), byteOrder, &hdr); err != nil {
		return nil, fmt.Errorf("decoding header: %w", Err(IOError, "%v", err))
	}
	if string(bytes.TrimRight(hdr.Magic[:], "\x00")) != Magic {
		return nil, Err(InvalidConfig, "not an OMNIFS container (bad magic)")
	}

	maxFiles := (hdr.BitmapOffset - hdr.MetaTableOffset) / MetaEntrySize
	users, err := readUserTable(f, int64(hdr.UserTableOffset), hdr.MaxUsers)
	if err != nil {
		return nil, err
	}
	meta, err := readMetaTable(f, int64(hdr.MetaTableOffset), maxFiles)
	if err != nil {
		return nil, err
	}

	blocksOffset, numBlocks, bmBytes := resolveBitmapLayout(hdr.TotalSize, int64(hdr.BitmapOffset), hdr.BlockSize)

	bm := newBitmap(numBlocks)
	bmBuf := make([]byte, bmBytes)
	if _, err := f.ReadAt(bmBuf, int64(hdr.BitmapOffset)); err != nil {
		return nil, fmt.Errorf("reading bitmap: %w", Err(IOError, "%v", err))
	}
	bm.bits = bmBuf

	trans, err := newTranscoder(hdr.EncodingMap())
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		path:      f.Name(),
		file:      f,
		header:    hdr,
		dev:       newBlockDevice(f, blocksOffset, int64(hdr.BlockSize)),
		bmap:      bm,
		meta:      meta,
		users:     users,
		trans:     trans,
		sessions:  newSessionRegistry(),
		numBlocks: numBlocks,
		log:       log,
	}
	inst.rebuildPathIndex()

	return inst, nil
}

// Shutdown closes the underlying container file. Any in-flight operation
// must have already completed -- the dispatcher guarantees this.
func (inst *Instance) Shutdown() error {
	if err := inst.file.Close(); err != nil {
		return fmt.Errorf("closing container %q: %w", inst.path, Err(IOError, "%v", err))
	}
	return nil
}

// persistHeader rewrites the header region, including the next_meta_index
// hint held in its reserved bytes.
func (inst *Instance) persistHeader() error {
	return writeHeader(inst.file, &inst.header)
}

func (inst *Instance) persistMeta() error {
	return inst.meta.persist(inst.file)
}

func (inst *Instance) persistBitmap() error {
	if _, err := inst.file.WriteAt(inst.bmap.bits, int64(inst.header.BitmapOffset)); err != nil {
		return fmt.Errorf("writing bitmap: %w", Err(IOError, "%v", err))
	}
	return nil
}

func (inst *Instance) persistUsers() error {
	return inst.users.persist(inst.file)
}

// flush fsyncs the underlying file. Dispatcher.run calls this after every
// successfully completed operation, so a caller never observes a result
// for a mutation that hasn't actually reached disk.
func (inst *Instance) flush() error {
	return inst.dev.flush()
}
