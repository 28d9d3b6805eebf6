package chaninfo

import (
	"testing"
)

type recordingLogger struct {
	infos    []string
	warnings []string
	errors   []string
}

func (l *recordingLogger) Info(message string, module string) {
	l.infos = append(l.infos, message)
}

func (l *recordingLogger) Warn(message string, module string) {
	l.warnings = append(l.warnings, message)
}

func (l *recordingLogger) Error(message string) {
	l.errors = append(l.errors, message)
}

func useRecordingLogger(t *testing.T) *recordingLogger {
	t.Helper()
	rec := &recordingLogger{}
	previous := logger
	SetLogger(rec)
	t.Cleanup(func() { SetLogger(previous) })
	return rec
}

func useConfiguration(t *testing.T, config Configuration) {
	t.Helper()
	previous := configuration
	SetConfiguration(config)
	t.Cleanup(func() { SetConfiguration(previous) })
}

// fakeTables serves fixed rows and counts the queries per table.
type fakeTables struct {
	wireChannels []WireChannelRow
	wireGeometry []WireGeometryRow
	tpcBad       []BadChannelRow
	mcBad        []BadChannelRow
	calib        []ChannelCalibRow
	err          error
	queries      map[string]int
}

func (f *fakeTables) count(table string) {
	if f.queries == nil {
		f.queries = make(map[string]int)
	}
	f.queries[table]++
}

func (f *fakeTables) WireChannels(ctx EventContext) (*RowSet[WireChannelRow], error) {
	f.count(WireChannelTable)
	if f.err != nil {
		return nil, f.err
	}
	return NewRowSet(f.wireChannels, func(r WireChannelRow) int { return int(r.ChannelId()) }), nil
}

func (f *fakeTables) WireGeometry(ctx EventContext) (*RowSet[WireGeometryRow], error) {
	f.count(WireGeometryTable)
	if f.err != nil {
		return nil, f.err
	}
	return NewRowSet(f.wireGeometry, func(r WireGeometryRow) int { return r.Wire }), nil
}

func (f *fakeTables) BadChannels(ctx EventContext, simulated bool) (*RowSet[BadChannelRow], error) {
	if f.err != nil {
		return nil, f.err
	}
	if simulated {
		f.count(MCBadChannelTable)
		return NewRowSet(f.mcBad, badChannelKey), nil
	}
	f.count(TPCBadChannelTable)
	return NewRowSet(f.tpcBad, badChannelKey), nil
}

func (f *fakeTables) ChannelCalibrations(ctx EventContext) (*RowSet[ChannelCalibRow], error) {
	f.count(ChannelCalibTable)
	if f.err != nil {
		return nil, f.err
	}
	return NewRowSet(f.calib, calibKey), nil
}

var (
	xChannel      = NewTPCChannelId(1, 4, 11)
	uChannel      = NewTPCChannelId(0, 0, 1)
	vChannel      = NewTPCChannelId(0, 0, 2)
	asicOnly      = NewTPCChannelId(2, 1, 5)
	unjoinedWire  = NewTPCChannelId(2, 1, 6)
	unknownDetChn = NewTPCChannelId(9, 9, 9)
)

// newFakeTables holds a small detector map:
//
//	1-4-11 -> wire 100 -> X-40
//	0-0-1  -> wire 1   -> U-0
//	0-0-2  -> wire 2   -> V-0
//	2-1-5  -> no wire
//	2-1-6  -> wire 999, missing from the geometry map
func newFakeTables() *fakeTables {
	return &fakeTables{
		wireChannels: []WireChannelRow{
			{Crate: 0, Card: 0, Channel: 1, Motherboard: 1, ASIC: 0, ASICChannel: 1, Wire: 1},
			{Crate: 0, Card: 0, Channel: 2, Motherboard: 1, ASIC: 0, ASICChannel: 2, Wire: 2},
			{Crate: 1, Card: 4, Channel: 11, Motherboard: 3, ASIC: 2, ASICChannel: 5, Wire: 100},
			{Crate: 2, Card: 1, Channel: 5, Motherboard: 7, ASIC: 1, ASICChannel: 2, Wire: 0},
			{Crate: 2, Card: 1, Channel: 6, Motherboard: 7, ASIC: 1, ASICChannel: 3, Wire: 999},
		},
		wireGeometry: []WireGeometryRow{
			{Wire: 1, Plane: int(PlaneU), PlaneWire: 0},
			{Wire: 2, Plane: int(PlaneV), PlaneWire: 0},
			{Wire: 100, Plane: int(PlaneX), PlaneWire: 40},
		},
	}
}

var (
	captainContext     = EventContext{Run: 4400, Event: 1, Partition: CAPTAINPartition}
	miniCAPTAINContext = EventContext{Run: 4400, Event: 1, Partition: MiniCAPTAINPartition}
	mcContext          = EventContext{Run: 0, Event: 1, Partition: MCPartition}
)
