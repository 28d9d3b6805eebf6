package chaninfo

type Configuration struct {
	Verbosity    int    `json:"verbosity"`
	Run          int    `json:"run"`
	Event        int    `json:"event"`
	Partition    string `json:"partition"`
	Host         string `json:"host"`
	User         string `json:"user"`
	Passwd       string `json:"pass"`
	DBName       string `json:"dbname"`
	Driver       string `json:"driver"`
	DSN          string `json:"dsn"`
	CacheSize    int    `json:"cache_size"`
	OverrideFile string `json:"override_file"`
	FileOut      string `json:"file_out"`

	CollectionX      float64 `json:"collection_x"`
	CollectionV      float64 `json:"collection_v"`
	CollectionU      float64 `json:"collection_u"`
	ElectronLifetime float64 `json:"electron_lifetime_us"`
	DriftVelocity    float64 `json:"drift_velocity_mm_us"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

// CalibParams holds the run-configured scalars used by ChannelCalib.
// Times and velocities are in internal units.
type CalibParams struct {
	CollectionX      float64
	CollectionV      float64
	CollectionU      float64
	ElectronLifetime float64
	DriftVelocity    float64
}

func DefaultCalibParams() CalibParams {
	return CalibParams{
		CollectionX:      1.0,
		CollectionV:      1.0,
		CollectionU:      1.0,
		ElectronLifetime: defaultElectronLifetime,
		DriftVelocity:    defaultDriftVelocity,
	}
}

// CalibParams converts the configured values, given in microseconds and
// mm/us, to internal units. Zero values keep the defaults.
func (c Configuration) CalibParams() CalibParams {
	params := DefaultCalibParams()
	if c.CollectionX > 0 {
		params.CollectionX = c.CollectionX
	}
	if c.CollectionV > 0 {
		params.CollectionV = c.CollectionV
	}
	if c.CollectionU > 0 {
		params.CollectionU = c.CollectionU
	}
	if c.ElectronLifetime > 0 {
		params.ElectronLifetime = c.ElectronLifetime * Microsecond
	}
	if c.DriftVelocity > 0 {
		params.DriftVelocity = c.DriftVelocity * Millimeter / Microsecond
	}
	return params
}
