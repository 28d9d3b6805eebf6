package chaninfo

import (
	"fmt"
)

// WriteMappings stores the translation tables of a context in an HDF5 file:
//
//	/Run/runInfo          run, event, partition
//	/Channels/mapping     one row per channel, sorted by channel
//
// Missing values are written as -1.
func WriteMappings(filename string, ctx EventContext, mappings []ChannelMapping) error {
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Writing %d channels to %s", len(mappings), filename), "writer")
	}

	file, err := openFile(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	runGroup, err := createGroup(file, "Run")
	if err != nil {
		return err
	}
	defer runGroup.Close()
	channelsGroup, err := createGroup(file, "Channels")
	if err != nil {
		return err
	}
	defer channelsGroup.Close()

	runTable, err := createTable(runGroup, "runInfo", RunInfoHDF5{})
	if err != nil {
		return err
	}
	defer runTable.Close()
	mappingTable, err := createTable(channelsGroup, "mapping", ChannelMappingHDF5{})
	if err != nil {
		return err
	}
	defer mappingTable.Close()

	runInfo := []RunInfoHDF5{{
		run_number:   int32(ctx.Run),
		event_number: int32(ctx.Event),
		partition:    int32(ctx.Partition),
	}}
	if err := writeArrayToTable(runTable, &runInfo, 0); err != nil {
		return fmt.Errorf("error writing run info: %w", err)
	}

	// The array MUST be allocated at creation, HDF5 writes straight from
	// the slice memory
	rows := make([]ChannelMappingHDF5, len(mappings))
	for i, m := range mappings {
		rows[i] = mappingToHDF5(m)
	}
	if err := writeArrayToTable(mappingTable, &rows, 0); err != nil {
		return fmt.Errorf("error writing channel mapping: %w", err)
	}
	return nil
}

func mappingToHDF5(m ChannelMapping) ChannelMappingHDF5 {
	row := ChannelMappingHDF5{
		crate:       int32(m.Channel.Crate()),
		card:        int32(m.Channel.Card()),
		channel:     int32(m.Channel.Channel()),
		plane:       -1,
		wire:        -1,
		tpcWire:     int32(m.Wire),
		motherboard: -1,
		asic:        -1,
		asicChannel: -1,
	}
	if m.Geometry.IsWire() {
		row.plane = int32(m.Geometry.Plane())
	}
	if m.Geometry.IsValid() {
		row.wire = int32(m.Geometry.Number())
	}
	if m.ASICAddress >= 0 {
		motherboard, asic, asicChannel := UnpackASICAddress(m.ASICAddress)
		row.motherboard = int32(motherboard)
		row.asic = int32(asic)
		row.asicChannel = int32(asicChannel)
	}
	return row
}
