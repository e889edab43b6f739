package quest

import (
	"fmt"
	"math/bits"
)

// Bitmap is the 10-bit daily completion state. Bit (questID-1) set
// means the quest was completed for the current on-chain day.
type Bitmap uint16

// Has reports whether the quest's bit is set. Out-of-range ids are
// never completed.
func (b Bitmap) Has(questID int) bool {
	if questID < 1 || questID > Count {
		return false
	}
	return b&(1<<(questID-1)) != 0
}

// Set marks the quest's bit. Out-of-range ids are ignored.
func (b *Bitmap) Set(questID int) {
	if questID < 1 || questID > Count {
		return
	}
	*b |= 1 << (questID - 1)
}

// CompletedCount returns how many quests are marked done.
func (b Bitmap) CompletedCount() int {
	return bits.OnesCount16(uint16(b))
}

// String renders the bitmap as a fixed-width binary string, highest
// quest id first.
func (b Bitmap) String() string {
	return fmt.Sprintf("%010b", uint16(b))
}
