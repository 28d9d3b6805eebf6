package chaninfo

import (
	"fmt"
)

// Channel status bits. The soft bits flag channels that are usable even
// though the calibration found something unusual.
const (
	StatusDead     = 0x01
	StatusNoisy    = 0x02
	StatusNoSignal = 0x04
	StatusLowGain  = 0x10
	StatusHighGain = 0x20
	StatusBadPeak  = 0x40
	StatusBadFit   = 0x80

	SoftStatusBits = StatusLowGain | StatusHighGain | StatusBadPeak | StatusBadFit
)

// A calibration table with fewer rows than this was never filled and every
// channel is taken as good.
const MinCalibRows = 10

// Values used for detector channels without a calibration row.
const (
	defaultPedestal         = 2048.0
	defaultGain             = 14.0 * MilliVolt / FemtoCoulomb
	defaultSlope            = 2.5 / MilliVolt
	defaultPeakTime         = 1.0 * Microsecond
	defaultRise             = 2.0
	defaultFall             = 2.0
	detectorTimeOffset      = -1.600 * Millisecond
	detectorDigitStep       = 500.0 * Nanosecond
	defaultElectronLifetime = 3.14e+8 * Second
	defaultDriftVelocity    = 1.6 * Millimeter / Microsecond
)

// The MiniCAPTAIN runs where only the U plane is treated as bipolar.
const (
	miniCAPTAINSpecialFirstRun = 4090
	miniCAPTAINSpecialEndRun   = 6000
)

const truthPrefix = "~/truth/elecSimple/"

// TruthRecord gives access to the per event simulation parameters. Each
// entry is a vector indexed by 0=X, 1=V, 2=U, 3=light sensor.
type TruthRecord interface {
	Get(path string) ([]float64, bool)
}

// MapTruth is a TruthRecord held in memory.
type MapTruth map[string][]float64

func (m MapTruth) Get(path string) ([]float64, bool) {
	v, ok := m[path]
	return v, ok
}

type badChannelCache struct {
	context EventContext
	filled  bool
	status  map[ChannelId]int
}

type averageShape struct {
	context  EventContext
	filled   bool
	peakTime float64
	rise     float64
	fall     float64
}

// ChannelCalib resolves calibration constants for simulated and detector
// channels. The context is the one last set on the ChannelInfo it was
// built with. Simulated channels read the event truth record set with
// SetTruth; detector channels read the calibration tables.
//
// Queries on a channel that is neither a detector channel nor a known
// simulated type return *ErrUnknownChannelType.
type ChannelCalib struct {
	info    *ChannelInfo
	tables  TableService
	params  CalibParams
	metrics *Metrics
	truth   TruthRecord

	tpcBad  badChannelCache
	mcBad   badChannelCache
	average averageShape
}

func NewChannelCalib(info *ChannelInfo, tables TableService, params CalibParams, metrics *Metrics) *ChannelCalib {
	return &ChannelCalib{
		info:    info,
		tables:  tables,
		params:  params,
		metrics: metrics,
	}
}

// SetTruth sets the simulation truth of the current event. It may be nil
// for detector data.
func (c *ChannelCalib) SetTruth(truth TruthRecord) {
	c.truth = truth
}

func (c *ChannelCalib) unknown(id ChannelId) error {
	logger.Error(fmt.Sprintf("Unknown channel: %v", id))
	return &ErrUnknownChannelType{Channel: id}
}

// mcIndex is the truth vector index of a simulated channel.
func (c *ChannelCalib) mcIndex(id ChannelId) (int, error) {
	switch id.SimType() {
	case SimWireType:
		if Plane(id.Sequence()).IsValid() {
			return id.Sequence(), nil
		}
	case SimLightType:
		return 3, nil
	}
	return -1, c.unknown(id)
}

func (c *ChannelCalib) truthValue(name string, index int) float64 {
	path := truthPrefix + name
	if c.truth == nil {
		logger.Error(fmt.Sprintf("No truth record to read %s", path))
		return 0.0
	}
	values, ok := c.truth.Get(path)
	if !ok || index < 0 || index >= len(values) {
		logger.Error(fmt.Sprintf("No entry %d in %s", index, path))
		return 0.0
	}
	return values[index]
}

func (c *ChannelCalib) updateBadChannels(cache *badChannelCache, simulated bool) {
	ctx := c.info.Context()
	if cache.filled && cache.context.SameCacheKey(ctx) {
		return
	}
	cache.context = ctx
	cache.filled = true
	cache.status = make(map[ChannelId]int)

	source := "detector"
	if simulated {
		source = "simulated"
	}
	c.metrics.badChannelRebuild(source)
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Bad channel table update (%s): %v", source, ctx), "channelCalib")
	}
	if !ctx.IsValid() {
		logger.Error(fmt.Sprintf("Bad channel table needs a valid context, got %v", ctx))
		return
	}

	rows, err := c.tables.BadChannels(ctx, simulated)
	if err != nil {
		logger.Error(fmt.Sprintf("error reading %s bad channel table: %v", source, err))
		return
	}
	for i := 0; i < rows.Count(); i++ {
		row, ok := rows.RowAt(i)
		if !ok || !row.Channel.IsValid() {
			continue
		}
		cache.status[row.Channel] = row.Status
	}
}

func (c *ChannelCalib) calibRows() *RowSet[ChannelCalibRow] {
	ctx := c.info.Context()
	if !ctx.IsValid() {
		logger.Error(fmt.Sprintf("Calibration table needs a valid context, got %v", ctx))
		return nil
	}
	rows, err := c.tables.ChannelCalibrations(ctx)
	if err != nil {
		logger.Error(fmt.Sprintf("error reading channel calibration table: %v", err))
		return nil
	}
	return rows
}

// detectorValue reads one quantity from the channel's calibration row,
// or returns the fallback.
func (c *ChannelCalib) detectorValue(id ChannelId, quantity string, fallback float64,
	value func(ChannelCalibRow) float64) float64 {
	row, ok := c.calibRows().RowByKey(int(id))
	if !ok {
		c.metrics.fallback(quantity)
		message := fmt.Sprintf("No %s calibration for %v in %v, using %g", quantity, id, c.info.Context(), fallback)
		logger.Warn(message, "channelCalib")
		return fallback
	}
	return value(row)
}

func (c *ChannelCalib) GetChannelStatus(id ChannelId) (int, error) {
	switch id.Kind() {
	case SimulatedChannelKind:
		if _, err := c.mcIndex(id); err != nil {
			return 0, err
		}
		c.updateBadChannels(&c.mcBad, true)
		return c.mcBad.status[id], nil
	case DetectorChannelKind:
		c.updateBadChannels(&c.tpcBad, false)
		if status, ok := c.tpcBad.status[id]; ok {
			return status, nil
		}
		rows := c.calibRows()
		if rows.Count() < MinCalibRows {
			return 0, nil
		}
		row, ok := rows.RowByKey(int(id))
		if !ok {
			return StatusNoSignal, nil
		}
		return row.Status, nil
	}
	return 0, c.unknown(id)
}

// IsGoodChannel ignores the soft status bits.
func (c *ChannelCalib) IsGoodChannel(id ChannelId) (bool, error) {
	status, err := c.GetChannelStatus(id)
	if err != nil {
		return false, err
	}
	return status&^SoftStatusBits == 0, nil
}

// IsBipolarSignal reports whether the channel reads an induction wire.
func (c *ChannelCalib) IsBipolarSignal(id ChannelId) (bool, error) {
	switch id.Kind() {
	case SimulatedChannelKind:
		index, err := c.mcIndex(id)
		if err != nil {
			return false, err
		}
		return index == int(PlaneV) || index == int(PlaneU), nil
	case DetectorChannelKind:
		geomId := c.info.GetGeometry(id)
		if !geomId.IsValid() {
			// Diagnostic channels have no wire; the first crates are the
			// induction planes.
			return id.Crate() < 2, nil
		}
		if !geomId.IsWire() {
			logger.Error(fmt.Sprintf("Channel %v is not a wire: %v", id, geomId))
			return false, nil
		}

		// The X wires are disconnected for most of these runs, but are
		// reported as unipolar anyway.
		ctx := c.info.Context()
		if ctx.IsMiniCAPTAIN() &&
			miniCAPTAINSpecialFirstRun <= ctx.Run &&
			ctx.Run < miniCAPTAINSpecialEndRun {
			return geomId.IsUWire(), nil
		}
		return !geomId.IsXWire(), nil
	}
	return false, c.unknown(id)
}

// GetGainConstant returns the pedestal for order 0 and the gain for
// order 1.
func (c *ChannelCalib) GetGainConstant(id ChannelId, order int) (float64, error) {
	switch id.Kind() {
	case SimulatedChannelKind:
		index, err := c.mcIndex(id)
		if err != nil {
			return 0.0, err
		}
		switch order {
		case 0:
			return c.truthValue("pedestal", index), nil
		case 1:
			return c.truthValue("gain", index), nil
		}
		return 0.0, nil
	case DetectorChannelKind:
		switch order {
		case 0:
			return c.detectorValue(id, "pedestal", defaultPedestal, func(r ChannelCalibRow) float64 {
				return r.Pedestal
			}), nil
		case 1:
			return c.detectorValue(id, "gain", defaultGain, func(r ChannelCalibRow) float64 {
				return r.Gain * MilliVolt / FemtoCoulomb
			}), nil
		}
		return 0.0, nil
	}
	return 0.0, c.unknown(id)
}

// GetDigitizerConstant returns the digitizer offset for order 0 and the
// slope in ADC per voltage for order 1.
func (c *ChannelCalib) GetDigitizerConstant(id ChannelId, order int) (float64, error) {
	switch id.Kind() {
	case SimulatedChannelKind:
		index, err := c.mcIndex(id)
		if err != nil {
			return 0.0, err
		}
		if order == 1 {
			return c.truthValue("slope", index), nil
		}
		return 0.0, nil
	case DetectorChannelKind:
		if order == 1 {
			return c.detectorValue(id, "slope", defaultSlope, func(r ChannelCalibRow) float64 {
				return r.Slope / MilliVolt
			}), nil
		}
		return 0.0, nil
	}
	return 0.0, c.unknown(id)
}

func (c *ChannelCalib) GetPulseShapePeakTime(id ChannelId) (float64, error) {
	return c.shapeParameter(id, "shape", defaultPeakTime, func(r ChannelCalibRow) float64 {
		return r.PeakTime * Nanosecond
	})
}

func (c *ChannelCalib) GetPulseShapeRise(id ChannelId) (float64, error) {
	return c.shapeParameter(id, "shapeRise", defaultRise, func(r ChannelCalibRow) float64 {
		return r.Rise
	})
}

func (c *ChannelCalib) GetPulseShapeFall(id ChannelId) (float64, error) {
	return c.shapeParameter(id, "shapeFall", defaultFall, func(r ChannelCalibRow) float64 {
		return r.Fall
	})
}

func (c *ChannelCalib) shapeParameter(id ChannelId, truthName string, fallback float64,
	value func(ChannelCalibRow) float64) (float64, error) {
	switch id.Kind() {
	case SimulatedChannelKind:
		index, err := c.mcIndex(id)
		if err != nil {
			return 0.0, err
		}
		return c.truthValue(truthName, index), nil
	case DetectorChannelKind:
		return c.detectorValue(id, truthName, fallback, value), nil
	}
	return 0.0, c.unknown(id)
}

// updateAverage fills the run averaged shape parameters for the current
// context.
func (c *ChannelCalib) updateAverage() {
	ctx := c.info.Context()
	if c.average.filled && c.average.context.SameCacheKey(ctx) {
		return
	}
	c.average = averageShape{
		context:  ctx,
		filled:   true,
		peakTime: defaultPeakTime,
		rise:     defaultRise,
		fall:     defaultFall,
	}

	rows := c.calibRows()
	n := rows.Count()
	if n == 0 {
		c.metrics.fallback("average")
		logger.Warn(fmt.Sprintf("No calibration rows to average in %v, using defaults", ctx), "channelCalib")
		return
	}
	var peakTime, rise, fall float64
	for i := 0; i < n; i++ {
		row, _ := rows.RowAt(i)
		peakTime += row.PeakTime * Nanosecond
		rise += row.Rise
		fall += row.Fall
	}
	c.average.peakTime = peakTime / float64(n)
	c.average.rise = rise / float64(n)
	c.average.fall = fall / float64(n)
}

func (c *ChannelCalib) GetAveragePulseShapePeakTime(id ChannelId) (float64, error) {
	switch id.Kind() {
	case SimulatedChannelKind:
		return c.GetPulseShapePeakTime(id)
	case DetectorChannelKind:
		c.updateAverage()
		return c.average.peakTime, nil
	}
	return 0.0, c.unknown(id)
}

func (c *ChannelCalib) GetAveragePulseShapeRise(id ChannelId) (float64, error) {
	switch id.Kind() {
	case SimulatedChannelKind:
		return c.GetPulseShapeRise(id)
	case DetectorChannelKind:
		c.updateAverage()
		return c.average.rise, nil
	}
	return 0.0, c.unknown(id)
}

func (c *ChannelCalib) GetAveragePulseShapeFall(id ChannelId) (float64, error) {
	switch id.Kind() {
	case SimulatedChannelKind:
		return c.GetPulseShapeFall(id)
	case DetectorChannelKind:
		c.updateAverage()
		return c.average.fall, nil
	}
	return 0.0, c.unknown(id)
}

// GetPulseShape is the normalized response of the channel at time t.
func (c *ChannelCalib) GetPulseShape(id ChannelId, t float64) (float64, error) {
	peakTime, err := c.GetPulseShapePeakTime(id)
	if err != nil {
		return 0.0, err
	}
	if t < 0.0 {
		return 0.0, nil
	}
	rise, err := c.GetPulseShapeRise(id)
	if err != nil {
		return 0.0, err
	}
	fall, err := c.GetPulseShapeFall(id)
	if err != nil {
		return 0.0, err
	}
	return PulseShapeNorm * PulseShape(t, peakTime, rise, fall), nil
}

// GetAveragePulseShape is GetPulseShape with the run averaged parameters.
func (c *ChannelCalib) GetAveragePulseShape(id ChannelId, t float64) (float64, error) {
	peakTime, err := c.GetAveragePulseShapePeakTime(id)
	if err != nil {
		return 0.0, err
	}
	if t < 0.0 {
		return 0.0, nil
	}
	rise, err := c.GetAveragePulseShapeRise(id)
	if err != nil {
		return 0.0, err
	}
	fall, err := c.GetAveragePulseShapeFall(id)
	if err != nil {
		return 0.0, err
	}
	return PulseShapeNorm * PulseShape(t, peakTime, rise, fall), nil
}

// GetTimeConstant returns the offset between the trigger and the first
// digitized sample for order 0 and the sample period for order 1.
func (c *ChannelCalib) GetTimeConstant(id ChannelId, order int) (float64, error) {
	switch id.Kind() {
	case SimulatedChannelKind:
		index, err := c.mcIndex(id)
		if err != nil {
			return 0.0, err
		}
		digitStep := c.truthValue("digitStep", index)
		switch order {
		case 0:
			// Tuned against the simulation time clustering.
			timeOffset := -c.truthValue("triggerOffset", index)
			switch index {
			case int(PlaneV):
				timeOffset += -digitStep + 23*Nanosecond
			case int(PlaneU):
				timeOffset += -digitStep + 52*Nanosecond
			}
			return timeOffset, nil
		case 1:
			return digitStep, nil
		}
		return 0.0, nil
	case DetectorChannelKind:
		switch order {
		case 0:
			return detectorTimeOffset, nil
		case 1:
			return detectorDigitStep, nil
		}
		return 0.0, nil
	}
	return 0.0, c.unknown(id)
}

// GetElectronLifetime reads the simulated argon purity when a truth record
// has it, otherwise the configured value.
func (c *ChannelCalib) GetElectronLifetime() float64 {
	if argon, ok := c.argon(); ok && len(argon) > 1 {
		return argon[1]
	}
	return c.params.ElectronLifetime
}

func (c *ChannelCalib) GetElectronDriftVelocity() float64 {
	if argon, ok := c.argon(); ok && len(argon) > 0 {
		return argon[0]
	}
	return c.params.DriftVelocity
}

func (c *ChannelCalib) argon() ([]float64, bool) {
	if c.truth == nil {
		return nil, false
	}
	return c.truth.Get(truthPrefix + "argon")
}

func (c *ChannelCalib) GetCollectionEfficiency(id ChannelId) (float64, error) {
	switch id.Kind() {
	case SimulatedChannelKind:
		index, err := c.mcIndex(id)
		if err != nil {
			return 0.0, err
		}
		switch index {
		case int(PlaneX):
			return c.params.CollectionX, nil
		case int(PlaneV):
			return c.params.CollectionV, nil
		case int(PlaneU):
			return c.params.CollectionU, nil
		case 3:
			return 1.0, nil
		}
		return 0.0, c.unknown(id)
	case DetectorChannelKind:
		return 1.0, nil
	}
	return 0.0, c.unknown(id)
}
