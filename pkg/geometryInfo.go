package chaninfo

import (
	"fmt"
	"math"
	"reflect"
)

type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector3) Dot(o Vector3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// WireTransform places one wire in the global frame.
type WireTransform struct {
	// Center of the wire.
	Position Vector3
	// Unit vector in the wire plane, perpendicular to the wire.
	Perpendicular Vector3
	HalfLength    float64
}

// GeometryModel is the loaded detector geometry. Wires returns the wires of
// a plane in wire number order. Handles should be pointers and a new
// geometry must be a new handle: the cache in GeometryInfo is keyed on
// handle identity. Handles of a non-comparable type (map, slice or func)
// are never cached.
type GeometryModel interface {
	Wires(plane Plane) []WireTransform
}

// GeometryInfo finds the wire nearest to a position.
type GeometryInfo struct {
	current  func() GeometryModel
	geometry GeometryModel
	wires    [nPlanes][]WireTransform
}

// NewGeometryInfo takes a function returning the geometry currently
// loaded; it is called on every query.
func NewGeometryInfo(current func() GeometryModel) *GeometryInfo {
	return &GeometryInfo{current: current}
}

func (g *GeometryInfo) fillWireCache() {
	geometry := g.current()
	if sameGeometry(geometry, g.geometry) {
		return
	}
	g.geometry = geometry
	for plane := PlaneX; plane < nPlanes; plane++ {
		g.wires[plane] = nil
		if geometry == nil {
			continue
		}
		g.wires[plane] = append([]WireTransform(nil), geometry.Wires(plane)...)
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Wire cache filled: X %d, V %d, U %d wires",
			len(g.wires[PlaneX]), len(g.wires[PlaneV]), len(g.wires[PlaneU]))
		logger.Info(message, "geometryInfo")
	}
}

func sameGeometry(a, b GeometryModel) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) || !t.Comparable() {
		return false
	}
	return a == b
}

// GetWire returns the number of the wire in the plane closest to the
// position, or -1.
func (g *GeometryInfo) GetWire(plane Plane, x float64, y float64, z float64) int {
	if !plane.IsValid() {
		return -1
	}
	g.fillWireCache()

	pos := Vector3{x, y, z}
	minDist := math.Inf(1)
	bestWire := -1
	for w, wire := range g.wires[plane] {
		d := math.Abs(pos.Sub(wire.Position).Dot(wire.Perpendicular))
		if d < minDist {
			minDist = d
			bestWire = w
		}
	}
	return bestWire
}

func (g *GeometryInfo) GetXWire(x float64, y float64, z float64) int {
	return g.GetWire(PlaneX, x, y, z)
}

func (g *GeometryInfo) GetVWire(x float64, y float64, z float64) int {
	return g.GetWire(PlaneV, x, y, z)
}

func (g *GeometryInfo) GetUWire(x float64, y float64, z float64) int {
	return g.GetWire(PlaneU, x, y, z)
}

func (g *GeometryInfo) GetWireCount(plane Plane) int {
	if !plane.IsValid() {
		return 0
	}
	g.fillWireCache()
	return len(g.wires[plane])
}

func (g *GeometryInfo) GetXWireCount() int { return g.GetWireCount(PlaneX) }
func (g *GeometryInfo) GetVWireCount() int { return g.GetWireCount(PlaneV) }
func (g *GeometryInfo) GetUWireCount() int { return g.GetWireCount(PlaneU) }
