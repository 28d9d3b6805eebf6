package chaninfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTPCChannelId(t *testing.T) {
	id := NewTPCChannelId(1, 4, 11)
	require.True(t, id.IsValid())
	assert.True(t, id.IsTPCChannel())
	assert.False(t, id.IsMCChannel())
	assert.Equal(t, DetectorChannelKind, id.Kind())
	assert.Equal(t, 1, id.Crate())
	assert.Equal(t, 4, id.Card())
	assert.Equal(t, 11, id.Channel())
	assert.Equal(t, -1, id.SimType())
	assert.Equal(t, -1, id.Number())
	assert.Equal(t, "TPC(1-4-11)", id.String())

	edge := NewTPCChannelId(255, 255, 4095)
	assert.Equal(t, 255, edge.Crate())
	assert.Equal(t, 255, edge.Card())
	assert.Equal(t, 4095, edge.Channel())
}

func TestMCChannelId(t *testing.T) {
	id := NewMCChannelId(SimWireType, int(PlaneV), 15)
	require.True(t, id.IsValid())
	assert.True(t, id.IsMCChannel())
	assert.Equal(t, SimulatedChannelKind, id.Kind())
	assert.Equal(t, SimWireType, id.SimType())
	assert.Equal(t, 1, id.Sequence())
	assert.Equal(t, 15, id.Number())
	assert.Equal(t, -1, id.Crate())
	assert.Equal(t, "MC(0:1:15)", id.String())
}

func TestChannelIdOutOfRange(t *testing.T) {
	for _, id := range []ChannelId{
		NewTPCChannelId(-1, 0, 0),
		NewTPCChannelId(256, 0, 0),
		NewTPCChannelId(0, 256, 0),
		NewTPCChannelId(0, 0, 4096),
		NewMCChannelId(16, 0, 0),
		NewMCChannelId(0, -1, 0),
		NewMCChannelId(0, 0, 65536),
	} {
		assert.Equal(t, InvalidChannel, id)
	}
	assert.False(t, InvalidChannel.IsValid())
	assert.Equal(t, InvalidChannelKind, ChannelId(0xF0000001).Kind())
	assert.Equal(t, "Invalid(0x00000000)", InvalidChannel.String())
}

func TestChannelIdCompare(t *testing.T) {
	a := NewTPCChannelId(0, 0, 1)
	b := NewTPCChannelId(0, 0, 2)
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	// Simulated channels sort before detector channels.
	assert.Equal(t, -1, NewMCChannelId(1, 255, 65535).Compare(a))
}

func TestParseTPCChannelId(t *testing.T) {
	id, err := ParseTPCChannelId("1-4-11")
	require.NoError(t, err)
	assert.Equal(t, NewTPCChannelId(1, 4, 11), id)

	for _, s := range []string{"", "1-4", "1-4-x", "1-4-11-2", "1-4-5000"} {
		_, err := ParseTPCChannelId(s)
		assert.Error(t, err, s)
	}
}
