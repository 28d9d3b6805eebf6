package chaninfo

import (
	"fmt"

	sqlx "github.com/jmoiron/sqlx"
)

// The tables read by SQLTables. The statements work with MySQL and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS TpcWireChannelMap (
		MinRun INTEGER NOT NULL,
		MaxRun INTEGER NOT NULL,
		Crate INTEGER NOT NULL,
		Card INTEGER NOT NULL,
		Channel INTEGER NOT NULL,
		Motherboard INTEGER NOT NULL,
		ASIC INTEGER NOT NULL,
		ASICChannel INTEGER NOT NULL,
		Wire INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS TpcWireGeometryMap (
		MinRun INTEGER NOT NULL,
		MaxRun INTEGER NOT NULL,
		Wire INTEGER NOT NULL,
		Plane INTEGER NOT NULL,
		PlaneWire INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS TpcBadChannel (
		MinRun INTEGER NOT NULL,
		MaxRun INTEGER NOT NULL,
		Crate INTEGER NOT NULL,
		Card INTEGER NOT NULL,
		Channel INTEGER NOT NULL,
		Status INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS McBadChannel (
		MinRun INTEGER NOT NULL,
		MaxRun INTEGER NOT NULL,
		Type INTEGER NOT NULL,
		Sequence INTEGER NOT NULL,
		Number INTEGER NOT NULL,
		Status INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS TpcChannelCalib (
		MinRun INTEGER NOT NULL,
		MaxRun INTEGER NOT NULL,
		Crate INTEGER NOT NULL,
		Card INTEGER NOT NULL,
		Channel INTEGER NOT NULL,
		Gain DOUBLE NOT NULL,
		PeakTime DOUBLE NOT NULL,
		Rise DOUBLE NOT NULL,
		Fall DOUBLE NOT NULL,
		Pedestal DOUBLE NOT NULL,
		Slope DOUBLE NOT NULL,
		Status INTEGER NOT NULL
	)`,
}

// CreateSchema creates the tables if they do not exist, e.g. to start a
// local SQLite snapshot.
func CreateSchema(db *sqlx.DB) error {
	for _, statement := range schema {
		if _, err := db.Exec(statement); err != nil {
			return fmt.Errorf("error creating schema: %w", err)
		}
	}
	return nil
}
