package chaninfo

// WireChannelRow connects an electronics channel to its ASIC address and to
// the global TPC wire number. Wire <= 0 means the channel has no wire.
type WireChannelRow struct {
	Crate       int `db:"Crate"`
	Card        int `db:"Card"`
	Channel     int `db:"Channel"`
	Motherboard int `db:"Motherboard"`
	ASIC        int `db:"ASIC"`
	ASICChannel int `db:"ASICChannel"`
	Wire        int `db:"Wire"`
}

func (r WireChannelRow) ChannelId() ChannelId {
	return NewTPCChannelId(r.Crate, r.Card, r.Channel)
}

// WireGeometryRow places a global TPC wire number in a plane.
type WireGeometryRow struct {
	Wire      int `db:"Wire"`
	Plane     int `db:"Plane"`
	PlaneWire int `db:"PlaneWire"`
}

func (r WireGeometryRow) GeometryId() GeometryId {
	return NewWireId(Plane(r.Plane), r.PlaneWire)
}

type BadChannelRow struct {
	Channel ChannelId
	Status  int
}

// ChannelCalibRow holds the calibration of one detector channel. Gain is
// in mV/fC, PeakTime in ns, Pedestal in ADC counts and Slope in ADC/mV.
type ChannelCalibRow struct {
	Channel  ChannelId
	Gain     float64
	PeakTime float64
	Rise     float64
	Fall     float64
	Pedestal float64
	Slope    float64
	Status   int
}

// RowSet is the result of one table query. Rows can be reached by position
// or by the integer key of their channel.
type RowSet[T any] struct {
	rows  []T
	index map[int]int
}

// NewRowSet builds a row set; key may be nil when rows are never looked up
// by channel.
func NewRowSet[T any](rows []T, key func(T) int) *RowSet[T] {
	set := &RowSet[T]{rows: rows}
	if key != nil {
		set.index = make(map[int]int, len(rows))
		for i, row := range rows {
			set.index[key(row)] = i
		}
	}
	return set
}

func (r *RowSet[T]) Count() int {
	if r == nil {
		return 0
	}
	return len(r.rows)
}

func (r *RowSet[T]) RowAt(i int) (T, bool) {
	var zero T
	if r == nil || i < 0 || i >= len(r.rows) {
		return zero, false
	}
	return r.rows[i], true
}

func (r *RowSet[T]) RowByKey(key int) (T, bool) {
	var zero T
	if r == nil || r.index == nil {
		return zero, false
	}
	i, ok := r.index[key]
	if !ok {
		return zero, false
	}
	return r.rows[i], true
}

func badChannelKey(row BadChannelRow) int {
	return int(row.Channel)
}

func calibKey(row ChannelCalibRow) int {
	return int(row.Channel)
}

// TableService answers the per context table queries used by ChannelInfo
// and ChannelCalib.
type TableService interface {
	WireChannels(ctx EventContext) (*RowSet[WireChannelRow], error)
	WireGeometry(ctx EventContext) (*RowSet[WireGeometryRow], error)
	BadChannels(ctx EventContext, simulated bool) (*RowSet[BadChannelRow], error)
	ChannelCalibrations(ctx EventContext) (*RowSet[ChannelCalibRow], error)
}
