package chaninfo

import (
	"fmt"
	"strings"
	"time"
)

type Partition int

const (
	InvalidPartition Partition = iota
	MCPartition
	CAPTAINPartition
	MiniCAPTAINPartition
)

func (p Partition) String() string {
	switch p {
	case MCPartition:
		return "mc"
	case CAPTAINPartition:
		return "captain"
	case MiniCAPTAINPartition:
		return "minicaptain"
	default:
		return "invalid"
	}
}

func ParsePartition(s string) (Partition, error) {
	switch strings.ToLower(s) {
	case "mc":
		return MCPartition, nil
	case "captain":
		return CAPTAINPartition, nil
	case "minicaptain", "mcaptain":
		return MiniCAPTAINPartition, nil
	}
	return InvalidPartition, fmt.Errorf("unknown partition %q", s)
}

// EventContext selects which mapping and calibration data apply.
type EventContext struct {
	Run       int
	Event     int
	Partition Partition
	Timestamp time.Time
}

func (c EventContext) IsValid() bool {
	switch c.Partition {
	case MCPartition, CAPTAINPartition, MiniCAPTAINPartition:
	default:
		return false
	}
	return c.Run >= 0
}

func (c EventContext) IsMC() bool {
	return c.Partition == MCPartition
}

func (c EventContext) IsDetector() bool {
	return c.Partition == CAPTAINPartition || c.Partition == MiniCAPTAINPartition
}

func (c EventContext) IsMiniCAPTAIN() bool {
	return c.Partition == MiniCAPTAINPartition
}

// SameCacheKey reports whether two contexts can share cached tables. Run,
// event and partition are compared. The timestamp is left out: callers stamp
// it with the wall clock and it would otherwise invalidate every cache.
func (c EventContext) SameCacheKey(other EventContext) bool {
	return c.Run == other.Run &&
		c.Event == other.Event &&
		c.Partition == other.Partition
}

func (c EventContext) String() string {
	return fmt.Sprintf("{%v run %d event %d}", c.Partition, c.Run, c.Event)
}
