package chaninfo

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	lru "github.com/hashicorp/golang-lru/v2"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

const (
	WireChannelTable   = "TpcWireChannelMap"
	WireGeometryTable  = "TpcWireGeometryMap"
	TPCBadChannelTable = "TpcBadChannel"
	MCBadChannelTable  = "McBadChannel"
	ChannelCalibTable  = "TpcChannelCalib"
)

const DefaultCacheSize = 64

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// OpenDatabase connects with any registered driver, e.g. "sqlite" for a
// local snapshot of the tables.
func OpenDatabase(driver string, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to %s database: %w", driver, err)
	}
	return db, nil
}

type tableKey struct {
	table     string
	run       int
	partition Partition
}

// SQLTables implements TableService on top of the run indexed tables.
// Every row is valid for the runs in [MinRun, MaxRun]. Row sets are kept
// in an LRU cache per table and run, so event changes inside a run do not
// reach the database.
type SQLTables struct {
	db      *sqlx.DB
	cache   *lru.Cache[tableKey, any]
	metrics *Metrics
}

func NewSQLTables(db *sqlx.DB, cacheSize int, metrics *Metrics) (*SQLTables, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[tableKey, any](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("error creating table cache: %w", err)
	}
	return &SQLTables{db: db, cache: cache, metrics: metrics}, nil
}

// Purge drops every cached row set.
func (s *SQLTables) Purge() {
	s.cache.Purge()
}

type tpcBadChannelEntry struct {
	Crate   int `db:"Crate"`
	Card    int `db:"Card"`
	Channel int `db:"Channel"`
	Status  int `db:"Status"`
}

type mcBadChannelEntry struct {
	Type     int `db:"Type"`
	Sequence int `db:"Sequence"`
	Number   int `db:"Number"`
	Status   int `db:"Status"`
}

type channelCalibEntry struct {
	Crate    int     `db:"Crate"`
	Card     int     `db:"Card"`
	Channel  int     `db:"Channel"`
	Gain     float64 `db:"Gain"`
	PeakTime float64 `db:"PeakTime"`
	Rise     float64 `db:"Rise"`
	Fall     float64 `db:"Fall"`
	Pedestal float64 `db:"Pedestal"`
	Slope    float64 `db:"Slope"`
	Status   int     `db:"Status"`
}

func (s *SQLTables) WireChannels(ctx EventContext) (*RowSet[WireChannelRow], error) {
	return cachedQuery(s, WireChannelTable, ctx, func() (*RowSet[WireChannelRow], error) {
		query := "SELECT Crate, Card, Channel, Motherboard, ASIC, ASICChannel, Wire FROM TpcWireChannelMap " +
			"WHERE MinRun <= ? and MaxRun >= ? ORDER BY Crate, Card, Channel"
		rows, err := queryRows[WireChannelRow](s.db, query, ctx.Run)
		if err != nil {
			return nil, err
		}
		return NewRowSet(rows, func(r WireChannelRow) int { return int(r.ChannelId()) }), nil
	})
}

func (s *SQLTables) WireGeometry(ctx EventContext) (*RowSet[WireGeometryRow], error) {
	return cachedQuery(s, WireGeometryTable, ctx, func() (*RowSet[WireGeometryRow], error) {
		query := "SELECT Wire, Plane, PlaneWire FROM TpcWireGeometryMap " +
			"WHERE MinRun <= ? and MaxRun >= ? ORDER BY Wire"
		rows, err := queryRows[WireGeometryRow](s.db, query, ctx.Run)
		if err != nil {
			return nil, err
		}
		return NewRowSet(rows, func(r WireGeometryRow) int { return r.Wire }), nil
	})
}

// BadChannels reads the detector table, keyed by crate, card and channel,
// or the simulation table, keyed by type, sequence and number.
func (s *SQLTables) BadChannels(ctx EventContext, simulated bool) (*RowSet[BadChannelRow], error) {
	if simulated {
		return cachedQuery(s, MCBadChannelTable, ctx, func() (*RowSet[BadChannelRow], error) {
			query := "SELECT Type, Sequence, Number, Status FROM McBadChannel WHERE MinRun <= ? and MaxRun >= ?"
			entries, err := queryRows[mcBadChannelEntry](s.db, query, ctx.Run)
			if err != nil {
				return nil, err
			}
			rows := make([]BadChannelRow, len(entries))
			for i, e := range entries {
				rows[i] = BadChannelRow{
					Channel: NewMCChannelId(e.Type, e.Sequence, e.Number),
					Status:  e.Status,
				}
			}
			return NewRowSet(rows, badChannelKey), nil
		})
	}
	return cachedQuery(s, TPCBadChannelTable, ctx, func() (*RowSet[BadChannelRow], error) {
		query := "SELECT Crate, Card, Channel, Status FROM TpcBadChannel WHERE MinRun <= ? and MaxRun >= ?"
		entries, err := queryRows[tpcBadChannelEntry](s.db, query, ctx.Run)
		if err != nil {
			return nil, err
		}
		rows := make([]BadChannelRow, len(entries))
		for i, e := range entries {
			rows[i] = BadChannelRow{
				Channel: NewTPCChannelId(e.Crate, e.Card, e.Channel),
				Status:  e.Status,
			}
		}
		return NewRowSet(rows, badChannelKey), nil
	})
}

func (s *SQLTables) ChannelCalibrations(ctx EventContext) (*RowSet[ChannelCalibRow], error) {
	return cachedQuery(s, ChannelCalibTable, ctx, func() (*RowSet[ChannelCalibRow], error) {
		query := "SELECT Crate, Card, Channel, Gain, PeakTime, Rise, Fall, Pedestal, Slope, Status " +
			"FROM TpcChannelCalib WHERE MinRun <= ? and MaxRun >= ?"
		entries, err := queryRows[channelCalibEntry](s.db, query, ctx.Run)
		if err != nil {
			return nil, err
		}
		rows := make([]ChannelCalibRow, len(entries))
		for i, e := range entries {
			rows[i] = ChannelCalibRow{
				Channel:  NewTPCChannelId(e.Crate, e.Card, e.Channel),
				Gain:     e.Gain,
				PeakTime: e.PeakTime,
				Rise:     e.Rise,
				Fall:     e.Fall,
				Pedestal: e.Pedestal,
				Slope:    e.Slope,
				Status:   e.Status,
			}
		}
		return NewRowSet(rows, calibKey), nil
	})
}

func cachedQuery[T any](s *SQLTables, table string, ctx EventContext,
	load func() (*RowSet[T], error)) (*RowSet[T], error) {
	key := tableKey{table: table, run: ctx.Run, partition: ctx.Partition}
	if cached, ok := s.cache.Get(key); ok {
		if configuration.Verbosity > 2 {
			message := fmt.Sprintf("%s for run %d found in cache", table, ctx.Run)
			logger.Info(message, "database")
		}
		return cached.(*RowSet[T]), nil
	}

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading %s for run %d from database", table, ctx.Run)
		logger.Info(message, "database")
	}
	s.metrics.tableQuery(table)
	set, err := load()
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", table, err)
	}
	s.cache.Add(key, set)
	return set, nil
}

func queryRows[T any](db *sqlx.DB, query string, run int) ([]T, error) {
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s [run %d]", query, run)
		logger.Info(message, "database")
	}
	rows, err := db.Queryx(query, run, run)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}
	defer rows.Close()

	result := make([]T, 0)
	for rows.Next() {
		var entry T
		err := rows.StructScan(&entry)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
