package ofs

// Config is the already-parsed configuration record the core accepts from
// its external collaborator (spec.md §1, §6). Parsing a config file or
// flags into this struct is explicitly out of core scope -- see
// pkg/ofsconfig.
type Config struct {
	TotalSize     uint64
	HeaderSize    uint64
	BlockSize     uint64
	MaxFiles      uint32
	MaxUsers      uint32
	AdminUsername string
	AdminPassword string
}

// DefaultConfig returns the spec.md §6 defaults.
func DefaultConfig() Config {
	return Config{
		TotalSize:     104857600,
		HeaderSize:    512,
		BlockSize:     4096,
		MaxFiles:      1000,
		MaxUsers:      50,
		AdminUsername: "admin",
		AdminPassword: "admin123",
	}
}

// Validate checks the constraints from spec.md §4.12 step 1.
func (c Config) Validate() error {
	if c.HeaderSize < MinHeaderSize {
		return Err(InvalidConfig, "header_size must be >= %d", MinHeaderSize)
	}
	if c.BlockSize < MinBlockSize {
		return Err(InvalidConfig, "block_size must be >= %d", MinBlockSize)
	}
	if c.TotalSize <= c.HeaderSize {
		return Err(InvalidConfig, "total_size must exceed header_size")
	}
	if c.MaxFiles == 0 {
		return Err(InvalidConfig, "max_files must be > 0")
	}
	if c.MaxUsers == 0 {
		return Err(InvalidConfig, "max_users must be > 0")
	}

	userTableSize := uint64(c.MaxUsers) * UserInfoSize
	metaTableSize := uint64(c.MaxFiles) * MetaEntrySize
	fixed := c.HeaderSize + userTableSize + metaTableSize
	if fixed >= c.TotalSize {
		return Err(InvalidConfig, "total_size too small to hold header, user table, and meta table")
	}

	// There must be room left for at least one block plus its bitmap bit.
	remaining := c.TotalSize - fixed
	if remaining < c.BlockSize+1 {
		return Err(InvalidConfig, "total_size too small to hold even one data block")
	}

	return nil
}
