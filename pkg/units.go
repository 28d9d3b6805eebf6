package chaninfo

// Internal units: ns, mm, and the electron charge. Everything returned by
// ChannelCalib is expressed in these.
const (
	Nanosecond  = 1.0
	Microsecond = 1.0e3 * Nanosecond
	Millisecond = 1.0e6 * Nanosecond
	Second      = 1.0e9 * Nanosecond

	Millimeter = 1.0

	eplus        = 1.0
	Coulomb      = eplus / 1.602176634e-19
	FemtoCoulomb = 1.0e-15 * Coulomb
	MegaVolt     = 1.0 / eplus
	Volt         = 1.0e-6 * MegaVolt
	MilliVolt    = 1.0e-3 * Volt
)
