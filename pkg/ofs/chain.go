package ofs

// Block-chain codec: a singly-linked sequence of blocks used for both file
// contents and directory child arrays. Grounded on the original's
// dir_block_read/write_block walk (original_source/source/core/ofs_core.cpp)
// generalized into a reusable walker shared by files and directories.

import "fmt"

// getChain walks the next-pointers starting at start, returning the
// ordered list of block indices. The walk is bounded at numBlocks+2 steps
// to refuse cycles (spec.md §4.1); exceeding the bound is an I/O error.
func (inst *Instance) getChain(start uint32) ([]uint32, error) {
	if start == 0 {
		return nil, nil
	}

	limit := inst.numBlocks + 2
	chain := make([]uint32, 0, 8)
	cur := start
	for cur != 0 {
		if int64(len(chain)) >= limit {
			return nil, fmt.Errorf("walking chain from block %d: %w", start, Err(IOError, "cycle or corrupt chain detected"))
		}
		next, _, err := inst.dev.readBlock(cur)
		if err != nil {
			return nil, err
		}
		chain = append(chain, cur)
		cur = next
	}
	return chain, nil
}

// freeChain frees every block in the chain rooted at start.
func (inst *Instance) freeChain(start uint32) error {
	chain, err := inst.getChain(start)
	if err != nil {
		return err
	}
	inst.bmap.free(chain)
	return nil
}
