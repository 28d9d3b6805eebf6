package chaninfo

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// ChannelInfo translates between channel identifiers and geometry
// identifiers for one event context at a time. SetContext must be called
// before any lookup, normally once per event. For simulated contexts the
// translation is computed from the identifiers; for detector contexts it
// comes from the wire maps in the TableService, which are read again only
// when the context changes.
//
// A ChannelInfo is not safe for concurrent use.
type ChannelInfo struct {
	tables    TableService
	metrics   *Metrics
	overrides []OverrideEntry

	context    EventContext
	hasContext bool

	channelToGeometry map[ChannelId]GeometryId
	geometryToChannel map[GeometryId]ChannelId
	channelToWire     map[ChannelId]int
	wireToChannel     map[int]ChannelId
	wireToGeometry    map[int]GeometryId
	geometryToWire    map[GeometryId]int
	// Packed as motherboard*1000000 + asic*1000 + asicChannel.
	channelToASIC map[ChannelId]int
}

func NewChannelInfo(tables TableService, metrics *Metrics) *ChannelInfo {
	ci := &ChannelInfo{
		tables:  tables,
		metrics: metrics,
	}
	ci.clear()
	return ci
}

// SetOverrides installs entries that are applied on top of the database
// maps at every rebuild. The next SetContext rebuilds even if the context
// is unchanged.
func (ci *ChannelInfo) SetOverrides(entries []OverrideEntry) {
	ci.overrides = entries
	ci.hasContext = false
}

func (ci *ChannelInfo) Context() EventContext {
	return ci.context
}

func (ci *ChannelInfo) SetContext(ctx EventContext) {
	if ci.hasContext && ci.context.SameCacheKey(ctx) {
		return
	}
	ci.context = ctx
	ci.hasContext = true

	if !ctx.IsValid() || ctx.IsMC() {
		ci.clear()
	}
	if !ctx.IsValid() {
		logger.Error(fmt.Sprintf("Channel map context is not valid: %v", ctx))
		return
	}
	if ctx.IsMC() {
		if configuration.Verbosity > 1 {
			logger.Info(fmt.Sprintf("Simulated context %v, no tables needed", ctx), "channelInfo")
		}
		return
	}
	ci.rebuild()
}

func (ci *ChannelInfo) clear() {
	ci.channelToGeometry = make(map[ChannelId]GeometryId)
	ci.geometryToChannel = make(map[GeometryId]ChannelId)
	ci.channelToWire = make(map[ChannelId]int)
	ci.wireToChannel = make(map[int]ChannelId)
	ci.wireToGeometry = make(map[int]GeometryId)
	ci.geometryToWire = make(map[GeometryId]int)
	ci.channelToASIC = make(map[ChannelId]int)
}

func (ci *ChannelInfo) rebuild() {
	ci.metrics.rebuild()
	ci.clear()
	defer ci.applyOverrides()

	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Channel map update: %v", ci.context), "channelInfo")
	}

	channels, err := ci.tables.WireChannels(ci.context)
	if err != nil {
		logger.Error(fmt.Sprintf("error reading wire channel map: %v", err))
		return
	}
	geometry, err := ci.tables.WireGeometry(ci.context)
	if err != nil {
		logger.Error(fmt.Sprintf("error reading wire geometry map: %v", err))
		return
	}
	if channels.Count() == 0 {
		logger.Error(fmt.Sprintf("No wire channel map rows for %v", ci.context))
		return
	}
	if geometry.Count() == 0 {
		logger.Error(fmt.Sprintf("No wire geometry map rows for %v", ci.context))
		return
	}

	for i := 0; i < channels.Count(); i++ {
		row, _ := channels.RowAt(i)
		cid := row.ChannelId()
		if !cid.IsValid() {
			logger.Warn(fmt.Sprintf("Invalid channel %d-%d-%d in wire channel map",
				row.Crate, row.Card, row.Channel), "channelInfo")
			continue
		}
		ci.channelToASIC[cid] = PackASICAddress(row.Motherboard, row.ASIC, row.ASICChannel)

		// Channels without a standard wire only have an ASIC address.
		if row.Wire <= 0 {
			continue
		}
		geomRow, ok := geometry.RowByKey(row.Wire)
		if !ok {
			logger.Warn(fmt.Sprintf("Wire %d for channel %v is not in the geometry map", row.Wire, cid),
				"channelInfo")
			continue
		}
		gid := geomRow.GeometryId()
		if !gid.IsValid() {
			logger.Warn(fmt.Sprintf("Wire %d has invalid plane %d or number %d",
				row.Wire, geomRow.Plane, geomRow.PlaneWire), "channelInfo")
			continue
		}

		ci.channelToGeometry[cid] = gid
		ci.geometryToChannel[gid] = cid
		ci.channelToWire[cid] = row.Wire
		ci.wireToChannel[row.Wire] = cid
		ci.wireToGeometry[row.Wire] = gid
		ci.geometryToWire[gid] = row.Wire
	}

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Channel map has %d channels, %d wires", len(ci.channelToASIC), len(ci.wireToChannel))
		logger.Info(message, "channelInfo")
	}
}

func (ci *ChannelInfo) applyOverrides() {
	for _, entry := range ci.overrides {
		if old, ok := ci.channelToGeometry[entry.Channel]; ok {
			delete(ci.geometryToChannel, old)
		}
		if old, ok := ci.geometryToChannel[entry.Geometry]; ok {
			delete(ci.channelToGeometry, old)
			ci.unlinkWire(old)
		}
		ci.unlinkWire(entry.Channel)
		ci.channelToGeometry[entry.Channel] = entry.Geometry
		ci.geometryToChannel[entry.Geometry] = entry.Channel

		// A wire belongs to its geometry element, so it moves with the geometry.
		if wire, ok := ci.geometryToWire[entry.Geometry]; ok {
			ci.channelToWire[entry.Channel] = wire
			ci.wireToChannel[wire] = entry.Channel
		}
	}
}

func (ci *ChannelInfo) unlinkWire(cid ChannelId) {
	if wire, ok := ci.channelToWire[cid]; ok {
		delete(ci.wireToChannel, wire)
		delete(ci.channelToWire, cid)
	}
}

func (ci *ChannelInfo) checkContext(operation string) bool {
	if !ci.hasContext {
		logger.Error(fmt.Sprintf("%s: the channel map context has not been set", operation))
		return false
	}
	if !ci.context.IsValid() {
		logger.Error(fmt.Sprintf("%s: invalid channel map context %v", operation, ci.context))
		return false
	}
	return true
}

func (ci *ChannelInfo) miss(mapName string, key any) {
	ci.metrics.lookupMiss(mapName)
	logger.Warn(fmt.Sprintf("No %s entry for %v in %v", mapName, key, ci.context), "channelInfo")
}

// GetChannel maps a geometry id to its electronics channel. The index is
// reserved for geometry elements read by several channels and must be 0.
func (ci *ChannelInfo) GetChannel(id GeometryId, index int) ChannelId {
	if index != 0 {
		logger.Error(fmt.Sprintf("GetChannel: index %d is not supported for %v", index, id))
		return InvalidChannel
	}
	if !ci.checkContext("GetChannel") {
		return InvalidChannel
	}
	if !id.IsValid() {
		logger.Error(fmt.Sprintf("GetChannel: invalid geometry id %v", id))
		return InvalidChannel
	}
	if ci.context.IsMC() {
		return mcChannelFromGeometry(id)
	}
	cid, ok := ci.geometryToChannel[id]
	if !ok {
		ci.miss("geometry to channel", id)
		return InvalidChannel
	}
	return cid
}

// GetChannelFromWire maps a global TPC wire number to its channel.
func (ci *ChannelInfo) GetChannelFromWire(wire int, index int) ChannelId {
	if index != 0 {
		logger.Error(fmt.Sprintf("GetChannelFromWire: index %d is not supported for wire %d", index, wire))
		return InvalidChannel
	}
	if !ci.checkContext("GetChannelFromWire") {
		return InvalidChannel
	}
	if wire <= 0 {
		logger.Error(fmt.Sprintf("GetChannelFromWire: invalid wire number %d", wire))
		return InvalidChannel
	}
	if ci.context.IsMC() {
		logger.Warn("Wire numbers are not defined for simulated channels", "channelInfo")
		return InvalidChannel
	}
	cid, ok := ci.wireToChannel[wire]
	if !ok {
		ci.miss("wire to channel", wire)
		return InvalidChannel
	}
	return cid
}

// GetChannelCount is the number of channels reading a geometry element.
func (ci *ChannelInfo) GetChannelCount(id GeometryId) int {
	if !id.IsValid() {
		return 0
	}
	return 1
}

func (ci *ChannelInfo) GetGeometry(id ChannelId) GeometryId {
	if !ci.checkContext("GetGeometry") {
		return InvalidGeometry
	}
	if !id.IsValid() {
		logger.Error(fmt.Sprintf("GetGeometry: invalid channel id %v", id))
		return InvalidGeometry
	}
	if ci.context.IsMC() {
		return mcGeometryFromChannel(id)
	}
	gid, ok := ci.channelToGeometry[id]
	if !ok {
		ci.miss("channel to geometry", id)
		return InvalidGeometry
	}
	return gid
}

func (ci *ChannelInfo) GetGeometryFromWire(wire int) GeometryId {
	if !ci.checkContext("GetGeometryFromWire") {
		return InvalidGeometry
	}
	if wire <= 0 {
		logger.Error(fmt.Sprintf("GetGeometryFromWire: invalid wire number %d", wire))
		return InvalidGeometry
	}
	if ci.context.IsMC() {
		logger.Warn("Wire numbers are not defined for simulated channels", "channelInfo")
		return InvalidGeometry
	}
	gid, ok := ci.wireToGeometry[wire]
	if !ok {
		ci.miss("wire to geometry", wire)
		return InvalidGeometry
	}
	return gid
}

// GetGeometryCount is the number of geometry elements read by a channel.
func (ci *ChannelInfo) GetGeometryCount(id ChannelId) int {
	if !id.IsValid() {
		return 0
	}
	return 1
}

// GetWireFromChannel returns the global TPC wire number, or -1.
func (ci *ChannelInfo) GetWireFromChannel(id ChannelId) int {
	if !ci.checkContext("GetWireFromChannel") {
		return -1
	}
	if !id.IsValid() {
		logger.Error(fmt.Sprintf("GetWireFromChannel: invalid channel id %v", id))
		return -1
	}
	if ci.context.IsMC() {
		logger.Warn("Wire numbers are not defined for simulated channels", "channelInfo")
		return -1
	}
	wire, ok := ci.channelToWire[id]
	if !ok {
		ci.miss("channel to wire", id)
		return -1
	}
	return wire
}

// GetWireFromGeometry returns the global TPC wire number, or -1.
func (ci *ChannelInfo) GetWireFromGeometry(id GeometryId) int {
	if !ci.checkContext("GetWireFromGeometry") {
		return -1
	}
	if !id.IsValid() {
		logger.Error(fmt.Sprintf("GetWireFromGeometry: invalid geometry id %v", id))
		return -1
	}
	if ci.context.IsMC() {
		logger.Warn("Wire numbers are not defined for simulated channels", "channelInfo")
		return -1
	}
	wire, ok := ci.geometryToWire[id]
	if !ok {
		ci.miss("geometry to wire", id)
		return -1
	}
	return wire
}

func (ci *ChannelInfo) asicAddress(operation string, id ChannelId) (int, bool) {
	if !ci.checkContext(operation) {
		return -1, false
	}
	if ci.context.IsMC() {
		logger.Error(fmt.Sprintf("%s: ASIC addresses are not defined in simulated context %v", operation, ci.context))
		return -1, false
	}
	// ASIC addresses only exist for detector hardware.
	if !id.IsTPCChannel() {
		return -1, false
	}
	addr, ok := ci.channelToASIC[id]
	if !ok {
		ci.miss("channel to ASIC", id)
		return -1, false
	}
	return addr, true
}

func (ci *ChannelInfo) GetMotherboard(id ChannelId) int {
	addr, ok := ci.asicAddress("GetMotherboard", id)
	if !ok {
		return -1
	}
	motherboard, _, _ := UnpackASICAddress(addr)
	return motherboard
}

func (ci *ChannelInfo) GetASIC(id ChannelId) int {
	addr, ok := ci.asicAddress("GetASIC", id)
	if !ok {
		return -1
	}
	_, asic, _ := UnpackASICAddress(addr)
	return asic
}

func (ci *ChannelInfo) GetASICChannel(id ChannelId) int {
	addr, ok := ci.asicAddress("GetASICChannel", id)
	if !ok {
		return -1
	}
	_, _, asicChannel := UnpackASICAddress(addr)
	return asicChannel
}

// ChannelMapping is one row of the translation tables.
type ChannelMapping struct {
	Channel     ChannelId
	Geometry    GeometryId
	Wire        int
	ASICAddress int
}

// Mappings lists every channel known for the current detector context,
// sorted by channel. Missing entries are InvalidGeometry or -1.
func (ci *ChannelInfo) Mappings() []ChannelMapping {
	if !ci.checkContext("Mappings") {
		return nil
	}
	if ci.context.IsMC() {
		logger.Error(fmt.Sprintf("Mappings: no detector channel map in simulated context %v", ci.context))
		return nil
	}
	channels := make([]ChannelId, 0, len(ci.channelToASIC))
	for cid := range ci.channelToASIC {
		channels = append(channels, cid)
	}
	for cid := range ci.channelToGeometry {
		if _, ok := ci.channelToASIC[cid]; !ok {
			channels = append(channels, cid)
		}
	}
	slices.Sort(channels)

	mappings := make([]ChannelMapping, len(channels))
	for i, cid := range channels {
		m := ChannelMapping{Channel: cid, Geometry: InvalidGeometry, Wire: -1, ASICAddress: -1}
		if gid, ok := ci.channelToGeometry[cid]; ok {
			m.Geometry = gid
		}
		if wire, ok := ci.channelToWire[cid]; ok {
			m.Wire = wire
		}
		if addr, ok := ci.channelToASIC[cid]; ok {
			m.ASICAddress = addr
		}
		mappings[i] = m
	}
	return mappings
}

func PackASICAddress(motherboard int, asic int, asicChannel int) int {
	return motherboard*1000000 + asic*1000 + asicChannel
}

func UnpackASICAddress(addr int) (motherboard int, asic int, asicChannel int) {
	return addr / 1000000, (addr / 1000) % 1000, addr % 1000
}

func mcChannelFromGeometry(id GeometryId) ChannelId {
	switch {
	case id.IsWire():
		return NewMCChannelId(SimWireType, int(id.Plane()), id.Number())
	case id.IsPhotosensor():
		return NewMCChannelId(SimLightType, 0, id.Number())
	}
	logger.Error(fmt.Sprintf("No simulated channel for %v", id))
	return InvalidChannel
}

func mcGeometryFromChannel(id ChannelId) GeometryId {
	if !id.IsMCChannel() {
		logger.Error(fmt.Sprintf("Channel %v is not simulated in a simulated context", id))
		return InvalidGeometry
	}
	switch id.SimType() {
	case SimWireType:
		return NewWireId(Plane(id.Sequence()), id.Number())
	case SimLightType:
		return NewPhotosensorId(id.Number())
	}
	logger.Error(fmt.Sprintf("No geometry for simulated channel %v", id))
	return InvalidGeometry
}
