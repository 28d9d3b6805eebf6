package chaninfo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePartition(t *testing.T) {
	tests := []struct {
		input string
		want  Partition
	}{
		{"mc", MCPartition},
		{"CAPTAIN", CAPTAINPartition},
		{"minicaptain", MiniCAPTAINPartition},
		{"mCAPTAIN", MiniCAPTAINPartition},
	}
	for _, tt := range tests {
		got, err := ParsePartition(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}
	_, err := ParsePartition("bigcaptain")
	assert.Error(t, err)
}

func TestEventContextKinds(t *testing.T) {
	assert.True(t, mcContext.IsValid())
	assert.True(t, mcContext.IsMC())
	assert.False(t, mcContext.IsDetector())

	assert.True(t, captainContext.IsDetector())
	assert.False(t, captainContext.IsMiniCAPTAIN())
	assert.True(t, miniCAPTAINContext.IsDetector())
	assert.True(t, miniCAPTAINContext.IsMiniCAPTAIN())

	assert.False(t, EventContext{Run: 1}.IsValid())
	assert.False(t, EventContext{Run: -1, Partition: CAPTAINPartition}.IsValid())
}

func TestSameCacheKey(t *testing.T) {
	a := EventContext{Run: 4400, Event: 3, Partition: CAPTAINPartition, Timestamp: time.Unix(100, 0)}
	b := a
	b.Timestamp = time.Unix(200, 0)
	assert.True(t, a.SameCacheKey(b))

	b = a
	b.Event = 4
	assert.False(t, a.SameCacheKey(b))
	b = a
	b.Run = 4401
	assert.False(t, a.SameCacheKey(b))
	b = a
	b.Partition = MiniCAPTAINPartition
	assert.False(t, a.SameCacheKey(b))
}

func TestEventContextString(t *testing.T) {
	assert.Equal(t, "{captain run 4400 event 1}", captainContext.String())
}
