package world

import (
	"encoding/binary"
	"iter"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/proximity/internal/core/proximity"
	"github.com/zeusync/proximity/internal/core/systems/physics"
)

// DefaultCellSize is the edge length of a grid cell in world units.
const DefaultCellSize = 4.0

// cellPad widens cell ranges so points on a cell boundary are never lost to
// rounding.
const cellPad = 1e-9

// maxCellSpan caps the per-axis cell range of a query; beyond it occupied
// cells are walked directly.
const maxCellSpan = 1 << 20

type cell [3]int64

// GridStatistics summarises grid usage.
type GridStatistics struct {
	Cells         int
	Objects       int
	Queries       uint64
	FullCellWalks uint64
	CellsPerQuery float64
}

// Grid is a uniform hash grid over finite positions. Cell coordinates are
// hashed with xxhash; two cells sharing a key only cost extra candidates.
type Grid struct {
	cellSize float64
	buckets  map[uint64][]proximity.Handle
	where    map[proximity.Handle]uint64

	queries, fullWalks, cellsVisited uint64
}

func NewGrid(cellSize float64) *Grid {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		cellSize = DefaultCellSize
	}
	return &Grid{
		cellSize: cellSize,
		buckets:  make(map[uint64][]proximity.Handle),
		where:    make(map[proximity.Handle]uint64),
	}
}

func (g *Grid) CellSize() float64 { return g.cellSize }

func (g *Grid) cellOf(p physics.Vec3) cell {
	return cell{
		int64(math.Floor(p.X / g.cellSize)),
		int64(math.Floor(p.Y / g.cellSize)),
		int64(math.Floor(p.Z / g.cellSize)),
	}
}

func cellKey(c cell) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(c[0]))
	binary.LittleEndian.PutUint64(buf[8:], uint64(c[1]))
	binary.LittleEndian.PutUint64(buf[16:], uint64(c[2]))
	return xxhash.Sum64(buf[:])
}

// Insert indexes h at p. Non-finite positions are not indexed.
func (g *Grid) Insert(h proximity.Handle, p physics.Vec3) {
	if !physics.IsFinite(p) {
		return
	}
	key := cellKey(g.cellOf(p))
	g.buckets[key] = append(g.buckets[key], h)
	g.where[h] = key
}

func (g *Grid) Remove(h proximity.Handle) {
	key, ok := g.where[h]
	if !ok {
		return
	}
	delete(g.where, h)

	bucket := g.buckets[key]
	if i := slices.Index(bucket, h); i >= 0 {
		bucket = slices.Delete(bucket, i, i+1)
	}
	if len(bucket) == 0 {
		delete(g.buckets, key)
		return
	}
	g.buckets[key] = bucket
}

func (g *Grid) Update(h proximity.Handle, p physics.Vec3) {
	if key, ok := g.where[h]; ok && physics.IsFinite(p) && key == cellKey(g.cellOf(p)) {
		return
	}
	g.Remove(h)
	g.Insert(h, p)
}

func (g *Grid) Clear() {
	clear(g.buckets)
	clear(g.where)
}

// Query yields every indexed handle whose cell intersects the axis-aligned
// box around the sphere. Callers filter by exact distance. When the box
// spans more cells than are occupied the occupied cells are walked instead.
func (g *Grid) Query(center physics.Vec3, radius float64) iter.Seq[proximity.Handle] {
	return func(yield func(proximity.Handle) bool) {
		if !physics.IsFinite(center) || math.IsNaN(radius) || radius < 0 {
			return
		}
		g.queries++

		pad := radius*(1+cellPad) + cellPad
		lo := g.cellOf(physics.Vec3{X: center.X - pad, Y: center.Y - pad, Z: center.Z - pad})
		hi := g.cellOf(physics.Vec3{X: center.X + pad, Y: center.Y + pad, Z: center.Z + pad})

		span := math.Inf(1)
		if pad/g.cellSize < maxCellSpan {
			span = 1
			for i := range lo {
				span *= float64(hi[i]-lo[i]) + 1
			}
		}
		if span > float64(len(g.buckets)) {
			g.fullWalks++
			g.cellsVisited += uint64(len(g.buckets))
			for _, bucket := range g.buckets {
				for _, h := range bucket {
					if !yield(h) {
						return
					}
				}
			}
			return
		}

		seen := make(map[uint64]struct{}, int(span))
		for x := lo[0]; x <= hi[0]; x++ {
			for y := lo[1]; y <= hi[1]; y++ {
				for z := lo[2]; z <= hi[2]; z++ {
					key := cellKey(cell{x, y, z})
					if _, dup := seen[key]; dup {
						continue
					}
					seen[key] = struct{}{}
					g.cellsVisited++
					for _, h := range g.buckets[key] {
						if !yield(h) {
							return
						}
					}
				}
			}
		}
	}
}

func (g *Grid) Statistics() GridStatistics {
	s := GridStatistics{
		Cells:         len(g.buckets),
		Objects:       len(g.where),
		Queries:       g.queries,
		FullCellWalks: g.fullWalks,
	}
	if g.queries > 0 {
		s.CellsPerQuery = float64(g.cellsVisited) / float64(g.queries)
	}
	return s
}
