package hasher

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// cacheKey folds (seed, hid, token) into a single uint64 for the CWS draw
// LRU.
func cacheKey(seed uint64, hid, token int) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], seed)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(hid))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(token))
	return xxhash.Sum64(buf[:16])
}
