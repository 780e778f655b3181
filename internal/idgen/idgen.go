// Package idgen produces identifiers for list entries (journal items,
// goals, meetings, members). IDs combine a base36 millisecond timestamp
// with a base36 random suffix, so records created under either storage
// backend, or offline and synced later, share one shape and collide only
// in practice-irrelevant probability. Generation is backend-independent
// and needs no central coordination.
package idgen

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	"strconv"
	"sync"
	"time"
)

const suffixLen = 9

var (
	mu   sync.Mutex
	last int64
)

// New returns a new identifier. The timestamp component is kept strictly
// monotonic across calls within the process, so two IDs generated in the
// same millisecond still sort in creation order.
func New() string {
	mu.Lock()
	now := time.Now().UnixMilli()
	if now <= last {
		now = last + 1
	}
	last = now
	mu.Unlock()

	return strconv.FormatInt(now, 36) + randomSuffix()
}

// randomSuffix returns suffixLen base36 characters from crypto/rand.
func randomSuffix() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand is expected to never fail on supported platforms;
		// fall back to the clock rather than returning a short ID.
		binary.BigEndian.PutUint64(buf[:], uint64(time.Now().UnixNano()))
	}
	n := new(big.Int).SetBytes(buf[:])
	s := n.Text(36)
	for len(s) < suffixLen {
		s = "0" + s
	}
	return s[:suffixLen]
}
