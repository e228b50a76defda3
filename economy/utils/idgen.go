package utils

import (
	"sync/atomic"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

var idSeq atomic.Uint64

// NewID returns a time-ordered snowflake ID. A process-wide sequence fills
// the low bits so IDs minted in the same millisecond stay unique.
func NewID(now time.Time) snowflake.ID {
	seq := idSeq.Add(1) & 0x3FFFFF
	return snowflake.ID(uint64(snowflake.New(now)) | seq)
}
