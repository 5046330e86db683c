package queue

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"

	"github.com/upnext/upnext/internal/domain/media"
)

// shuffleItems permutes items in place using the Fisher-Yates algorithm,
// which yields every permutation with equal probability. A sort with a
// random comparator does not and must not be used here.
func shuffleItems(items []media.Item, rng *rand.Rand) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// newRand returns a rand.Rand seeded from crypto/rand, falling back to the
// wall clock when the system source is unavailable.
func newRand() *rand.Rand {
	var seed int64
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(buf[:]))
	} else {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
