package chaninfo

import (
	"fmt"
	"strconv"
	"strings"
)

// ChannelId identifies an electronics channel. The top four bits select
// the subsystem, the rest are the subsystem fields:
//
//	detector:  [31:28]=2 crate[27:20] card[19:12] channel[11:0]
//	simulated: [31:28]=1 type[27:24] sequence[23:16] number[15:0]
//
// The zero value is the invalid channel.
type ChannelId uint32

type ChannelKind int

const (
	InvalidChannelKind ChannelKind = iota
	SimulatedChannelKind
	DetectorChannelKind
)

const InvalidChannel ChannelId = 0

// Simulated channel types.
const (
	SimWireType  = 0
	SimLightType = 1
)

const (
	subsystemShift = 28
	subsystemMask  = 0xF

	tpcCrateShift   = 20
	tpcCrateMask    = 0xFF
	tpcCardShift    = 12
	tpcCardMask     = 0xFF
	tpcChannelMask  = 0xFFF
	mcTypeShift     = 24
	mcTypeMask      = 0xF
	mcSequenceShift = 16
	mcSequenceMask  = 0xFF
	mcNumberMask    = 0xFFFF
)

func NewTPCChannelId(crate int, card int, channel int) ChannelId {
	if crate < 0 || crate > tpcCrateMask {
		return InvalidChannel
	}
	if card < 0 || card > tpcCardMask {
		return InvalidChannel
	}
	if channel < 0 || channel > tpcChannelMask {
		return InvalidChannel
	}
	return ChannelId(uint32(DetectorChannelKind)<<subsystemShift |
		uint32(crate)<<tpcCrateShift |
		uint32(card)<<tpcCardShift |
		uint32(channel))
}

func NewMCChannelId(simType int, sequence int, number int) ChannelId {
	if simType < 0 || simType > mcTypeMask {
		return InvalidChannel
	}
	if sequence < 0 || sequence > mcSequenceMask {
		return InvalidChannel
	}
	if number < 0 || number > mcNumberMask {
		return InvalidChannel
	}
	return ChannelId(uint32(SimulatedChannelKind)<<subsystemShift |
		uint32(simType)<<mcTypeShift |
		uint32(sequence)<<mcSequenceShift |
		uint32(number))
}

func (c ChannelId) Kind() ChannelKind {
	switch k := ChannelKind((uint32(c) >> subsystemShift) & subsystemMask); k {
	case SimulatedChannelKind, DetectorChannelKind:
		return k
	default:
		return InvalidChannelKind
	}
}

func (c ChannelId) IsValid() bool {
	return c.Kind() != InvalidChannelKind
}

func (c ChannelId) IsMCChannel() bool {
	return c.Kind() == SimulatedChannelKind
}

func (c ChannelId) IsTPCChannel() bool {
	return c.Kind() == DetectorChannelKind
}

// Crate, Card and Channel return -1 for non detector channels.
func (c ChannelId) Crate() int {
	if !c.IsTPCChannel() {
		return -1
	}
	return int((uint32(c) >> tpcCrateShift) & tpcCrateMask)
}

func (c ChannelId) Card() int {
	if !c.IsTPCChannel() {
		return -1
	}
	return int((uint32(c) >> tpcCardShift) & tpcCardMask)
}

func (c ChannelId) Channel() int {
	if !c.IsTPCChannel() {
		return -1
	}
	return int(uint32(c) & tpcChannelMask)
}

// SimType, Sequence and Number return -1 for non simulated channels.
func (c ChannelId) SimType() int {
	if !c.IsMCChannel() {
		return -1
	}
	return int((uint32(c) >> mcTypeShift) & mcTypeMask)
}

func (c ChannelId) Sequence() int {
	if !c.IsMCChannel() {
		return -1
	}
	return int((uint32(c) >> mcSequenceShift) & mcSequenceMask)
}

func (c ChannelId) Number() int {
	if !c.IsMCChannel() {
		return -1
	}
	return int(uint32(c) & mcNumberMask)
}

func (c ChannelId) Compare(other ChannelId) int {
	switch {
	case c < other:
		return -1
	case c > other:
		return 1
	default:
		return 0
	}
}

func (c ChannelId) String() string {
	switch c.Kind() {
	case DetectorChannelKind:
		return fmt.Sprintf("TPC(%d-%d-%d)", c.Crate(), c.Card(), c.Channel())
	case SimulatedChannelKind:
		return fmt.Sprintf("MC(%d:%d:%d)", c.SimType(), c.Sequence(), c.Number())
	default:
		return fmt.Sprintf("Invalid(0x%08x)", uint32(c))
	}
}

// ParseTPCChannelId reads "crate-card-channel", e.g. "1-4-11".
func ParseTPCChannelId(s string) (ChannelId, error) {
	fields := strings.Split(strings.TrimSpace(s), "-")
	if len(fields) != 3 {
		return InvalidChannel, fmt.Errorf("channel %q is not <crate>-<card>-<chan>", s)
	}
	values := make([]int, 3)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return InvalidChannel, fmt.Errorf("channel %q: %w", s, err)
		}
		values[i] = v
	}
	id := NewTPCChannelId(values[0], values[1], values[2])
	if !id.IsValid() {
		return InvalidChannel, fmt.Errorf("channel %q out of range", s)
	}
	return id, nil
}
