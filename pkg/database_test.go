package chaninfo

import (
	"testing"

	sqlx "github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDatabase(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenDatabase("sqlite", ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a new database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, CreateSchema(db))

	db.MustExec(`INSERT INTO TpcWireChannelMap VALUES
		(4000, 4999, 1, 4, 11, 3, 2, 5, 100),
		(4000, 4999, 0, 0, 1, 1, 0, 1, 1),
		(4000, 4999, 2, 1, 5, 7, 1, 2, 0),
		(5000, 5999, 1, 4, 11, 3, 2, 5, 101)`)
	db.MustExec(`INSERT INTO TpcWireGeometryMap VALUES
		(4000, 5999, 1, 2, 0),
		(4000, 5999, 100, 0, 40),
		(4000, 5999, 101, 0, 41)`)
	db.MustExec(`INSERT INTO TpcBadChannel VALUES
		(4000, 4999, 0, 0, 1, 1)`)
	db.MustExec(`INSERT INTO McBadChannel VALUES
		(0, 100000, 0, 1, 5, 2)`)
	db.MustExec(`INSERT INTO TpcChannelCalib VALUES
		(4000, 4999, 1, 4, 11, 14.0, 500.0, 2.0, 2.0, 2050.0, 2.5, 16)`)
	return db
}

func TestSQLTablesRunRange(t *testing.T) {
	useRecordingLogger(t)
	tables, err := NewSQLTables(openTestDatabase(t), 0, nil)
	require.NoError(t, err)

	channels, err := tables.WireChannels(captainContext)
	require.NoError(t, err)
	require.Equal(t, 3, channels.Count())
	row, ok := channels.RowByKey(int(xChannel))
	require.True(t, ok)
	assert.Equal(t, WireChannelRow{Crate: 1, Card: 4, Channel: 11, Motherboard: 3, ASIC: 2, ASICChannel: 5, Wire: 100}, row)
	first, ok := channels.RowAt(0)
	require.True(t, ok)
	assert.Equal(t, uChannel, first.ChannelId())

	later := EventContext{Run: 5500, Event: 1, Partition: CAPTAINPartition}
	channels, err = tables.WireChannels(later)
	require.NoError(t, err)
	require.Equal(t, 1, channels.Count())
	row, _ = channels.RowAt(0)
	assert.Equal(t, 101, row.Wire)

	channels, err = tables.WireChannels(EventContext{Run: 7000, Partition: CAPTAINPartition})
	require.NoError(t, err)
	assert.Equal(t, 0, channels.Count())

	geometry, err := tables.WireGeometry(captainContext)
	require.NoError(t, err)
	assert.Equal(t, 3, geometry.Count())
	wire, ok := geometry.RowByKey(100)
	require.True(t, ok)
	assert.Equal(t, NewWireId(PlaneX, 40), wire.GeometryId())
}

func TestSQLTablesBadChannels(t *testing.T) {
	useRecordingLogger(t)
	tables, err := NewSQLTables(openTestDatabase(t), 0, nil)
	require.NoError(t, err)

	bad, err := tables.BadChannels(captainContext, false)
	require.NoError(t, err)
	row, ok := bad.RowByKey(int(uChannel))
	require.True(t, ok)
	assert.Equal(t, StatusDead, row.Status)

	bad, err = tables.BadChannels(mcContext, true)
	require.NoError(t, err)
	row, ok = bad.RowByKey(int(NewMCChannelId(SimWireType, int(PlaneV), 5)))
	require.True(t, ok)
	assert.Equal(t, StatusNoisy, row.Status)
}

func TestSQLTablesCalibration(t *testing.T) {
	useRecordingLogger(t)
	tables, err := NewSQLTables(openTestDatabase(t), 0, nil)
	require.NoError(t, err)

	calib, err := tables.ChannelCalibrations(captainContext)
	require.NoError(t, err)
	row, ok := calib.RowByKey(int(xChannel))
	require.True(t, ok)
	assert.Equal(t, ChannelCalibRow{
		Channel:  xChannel,
		Gain:     14.0,
		PeakTime: 500.0,
		Rise:     2.0,
		Fall:     2.0,
		Pedestal: 2050.0,
		Slope:    2.5,
		Status:   StatusLowGain,
	}, row)
}

func TestSQLTablesCache(t *testing.T) {
	useRecordingLogger(t)
	metrics := NewMetrics(prometheus.NewRegistry())
	tables, err := NewSQLTables(openTestDatabase(t), 2, metrics)
	require.NoError(t, err)
	queries := func() float64 {
		return testutil.ToFloat64(metrics.tableQueryCounter.WithLabelValues(WireChannelTable))
	}

	_, err = tables.WireChannels(captainContext)
	require.NoError(t, err)
	next := captainContext
	next.Event = 99
	_, err = tables.WireChannels(next)
	require.NoError(t, err)
	assert.Equal(t, 1.0, queries())

	// Same run in another partition is another entry.
	_, err = tables.WireChannels(miniCAPTAINContext)
	require.NoError(t, err)
	assert.Equal(t, 2.0, queries())

	tables.Purge()
	_, err = tables.WireChannels(captainContext)
	require.NoError(t, err)
	assert.Equal(t, 3.0, queries())
}

func TestSQLTablesQueryError(t *testing.T) {
	useRecordingLogger(t)
	db, err := OpenDatabase("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	tables, err := NewSQLTables(db, 0, nil)
	require.NoError(t, err)

	_, err = tables.WireChannels(captainContext)
	assert.ErrorContains(t, err, WireChannelTable)
}

func TestSQLTablesWithChannelServices(t *testing.T) {
	useRecordingLogger(t)
	metrics := NewMetrics(prometheus.NewRegistry())
	tables, err := NewSQLTables(openTestDatabase(t), 0, metrics)
	require.NoError(t, err)
	info := NewChannelInfo(tables, metrics)
	info.SetContext(captainContext)
	calib := NewChannelCalib(info, tables, DefaultCalibParams(), metrics)

	assert.Equal(t, NewWireId(PlaneX, 40), info.GetGeometry(xChannel))
	assert.Equal(t, NewWireId(PlaneU, 0), info.GetGeometryFromWire(1))
	assert.Equal(t, 7, info.GetMotherboard(asicOnly))

	gain, err := calib.GetGainConstant(xChannel, 1)
	require.NoError(t, err)
	assert.InEpsilon(t, 14.0*MilliVolt/FemtoCoulomb, gain, 1e-12)
	good, err := calib.IsGoodChannel(uChannel)
	require.NoError(t, err)
	assert.False(t, good)
	good, err = calib.IsGoodChannel(xChannel)
	require.NoError(t, err)
	assert.True(t, good)

	info.SetContext(EventContext{Run: 5500, Event: 1, Partition: CAPTAINPartition})
	assert.Equal(t, NewWireId(PlaneX, 41), info.GetGeometry(xChannel))
}
