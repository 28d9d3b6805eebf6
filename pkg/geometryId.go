package chaninfo

import (
	"fmt"
	"strconv"
	"strings"
)

// Plane numbering matches the index of the simulation truth vectors.
type Plane int

const (
	PlaneX Plane = iota
	PlaneV
	PlaneU
	nPlanes
)

func (p Plane) IsValid() bool {
	return p >= PlaneX && p < nPlanes
}

func (p Plane) String() string {
	switch p {
	case PlaneX:
		return "X"
	case PlaneV:
		return "V"
	case PlaneU:
		return "U"
	default:
		return "Unknown"
	}
}

func ParsePlane(s string) (Plane, error) {
	switch strings.ToUpper(s) {
	case "X":
		return PlaneX, nil
	case "V":
		return PlaneV, nil
	case "U":
		return PlaneU, nil
	}
	return -1, fmt.Errorf("unknown plane %q", s)
}

// GeometryId identifies a structural element of the detector:
//
//	wire:        [31:28]=1 plane[27:24] number[19:0]
//	photosensor: [31:28]=2 number[23:0]
type GeometryId uint32

const InvalidGeometry GeometryId = 0

const (
	geomKindShift    = 28
	geomKindMask     = 0xF
	geomWireKind     = 1
	geomSensorKind   = 2
	geomPlaneShift   = 24
	geomPlaneMask    = 0xF
	geomWireMask     = 0xFFFFF
	geomSensorNbMask = 0xFFFFFF
)

func NewWireId(plane Plane, wire int) GeometryId {
	if !plane.IsValid() || wire < 0 || wire > geomWireMask {
		return InvalidGeometry
	}
	return GeometryId(uint32(geomWireKind)<<geomKindShift |
		uint32(plane)<<geomPlaneShift |
		uint32(wire))
}

func NewPhotosensorId(sensor int) GeometryId {
	if sensor < 0 || sensor > geomSensorNbMask {
		return InvalidGeometry
	}
	return GeometryId(uint32(geomSensorKind)<<geomKindShift | uint32(sensor))
}

func (g GeometryId) kind() uint32 {
	return (uint32(g) >> geomKindShift) & geomKindMask
}

func (g GeometryId) IsWire() bool {
	return g.kind() == geomWireKind && g.Plane().IsValid()
}

func (g GeometryId) IsPhotosensor() bool {
	return g.kind() == geomSensorKind
}

func (g GeometryId) IsValid() bool {
	return g.IsWire() || g.IsPhotosensor()
}

func (g GeometryId) IsXWire() bool { return g.IsWire() && g.Plane() == PlaneX }
func (g GeometryId) IsVWire() bool { return g.IsWire() && g.Plane() == PlaneV }
func (g GeometryId) IsUWire() bool { return g.IsWire() && g.Plane() == PlaneU }

// Plane returns -1 unless the id is a wire.
func (g GeometryId) Plane() Plane {
	if g.kind() != geomWireKind {
		return -1
	}
	return Plane((uint32(g) >> geomPlaneShift) & geomPlaneMask)
}

// Number is the wire number within its plane or the sensor number.
func (g GeometryId) Number() int {
	switch {
	case g.IsWire():
		return int(uint32(g) & geomWireMask)
	case g.IsPhotosensor():
		return int(uint32(g) & geomSensorNbMask)
	default:
		return -1
	}
}

func (g GeometryId) String() string {
	switch {
	case g.IsWire():
		return fmt.Sprintf("%v-%d", g.Plane(), g.Number())
	case g.IsPhotosensor():
		return fmt.Sprintf("PMT-%d", g.Number())
	default:
		return fmt.Sprintf("Invalid(0x%08x)", uint32(g))
	}
}

// ParseWireId reads "[uvx]-number", e.g. "X-231".
func ParseWireId(s string) (GeometryId, error) {
	planeStr, wireStr, found := strings.Cut(strings.TrimSpace(s), "-")
	if !found {
		return InvalidGeometry, fmt.Errorf("geometry %q is not [uvx]-<wire>", s)
	}
	plane, err := ParsePlane(planeStr)
	if err != nil {
		return InvalidGeometry, err
	}
	wire, err := strconv.Atoi(wireStr)
	if err != nil {
		return InvalidGeometry, fmt.Errorf("geometry %q: %w", s, err)
	}
	id := NewWireId(plane, wire)
	if !id.IsValid() {
		return InvalidGeometry, fmt.Errorf("geometry %q out of range", s)
	}
	return id, nil
}
