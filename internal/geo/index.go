// Package geo provides the spatial index over active store locations.
//
// The index partitions the globe into fixed-size lat/lon grid cells. A
// radius query scans only the cells covered by the bounding box of the
// search circle, then filters by great-circle distance, so query cost is
// proportional to local store density rather than total store count.
package geo

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"medicine-locator/internal/models"
	"medicine-locator/internal/util"
)

// DefaultCellSizeDegrees is roughly 2.2km of latitude per cell.
const DefaultCellSizeDegrees = 0.02

// metersPerDegreeLat is the approximate north-south extent of one degree.
const metersPerDegreeLat = 111320.0

type cellKey struct {
	x, y int
}

type storePoint struct {
	storeID string
	lat     float64
	lon     float64
}

// indexState is the immutable state of the index. Readers load it
// atomically and never observe a partially applied mutation.
type indexState struct {
	cells     map[cellKey][]storePoint
	locations map[string]storePoint
}

// Index answers "active stores within radius R of point P" queries.
// It uses a copy-on-write pattern: mutations build a new state and swap
// it in, so queries are lock-free and each query runs against a single
// stable snapshot.
type Index struct {
	mu          sync.Mutex // serializes writers
	state       atomic.Pointer[indexState]
	cellSizeDeg float64
}

// NewIndex creates an empty spatial index.
func NewIndex() *Index {
	idx := &Index{cellSizeDeg: DefaultCellSizeDegrees}
	idx.state.Store(&indexState{
		cells:     make(map[cellKey][]storePoint),
		locations: make(map[string]storePoint),
	})
	return idx
}

// Build bulk-loads the index from the store registry. Inactive stores
// are skipped.
func (i *Index) Build(stores []models.Store) {
	i.mu.Lock()
	defer i.mu.Unlock()

	next := &indexState{
		cells:     make(map[cellKey][]storePoint),
		locations: make(map[string]storePoint, len(stores)),
	}
	for _, s := range stores {
		if !s.Active {
			continue
		}
		p := storePoint{storeID: s.ID, lat: s.Latitude, lon: s.Longitude}
		next.locations[s.ID] = p
		k := i.cell(p.lat, p.lon)
		next.cells[k] = append(next.cells[k], p)
	}
	i.state.Store(next)
	util.GeoIndexSize.Set(float64(len(next.locations)))
}

// Insert adds or relocates a store. Called when a store is activated.
func (i *Index) Insert(storeID string, lat, lon float64) {
	i.mu.Lock()
	defer i.mu.Unlock()

	cur := i.state.Load()
	next := i.cloneWithout(cur, storeID)

	p := storePoint{storeID: storeID, lat: lat, lon: lon}
	next.locations[storeID] = p
	k := i.cell(lat, lon)
	next.cells[k] = append(next.cells[k], p)

	i.state.Store(next)
	util.GeoIndexSize.Set(float64(len(next.locations)))
}

// Remove drops a store from the index. Called when a store is
// deactivated. Removing an unknown store is a no-op.
func (i *Index) Remove(storeID string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	cur := i.state.Load()
	if _, ok := cur.locations[storeID]; !ok {
		return
	}
	next := i.cloneWithout(cur, storeID)
	i.state.Store(next)
	util.GeoIndexSize.Set(float64(len(next.locations)))
}

// Len returns the number of indexed stores.
func (i *Index) Len() int {
	return len(i.state.Load().locations)
}

// Snapshot returns a stable view of the index. All radius attempts of a
// single query should run against one snapshot so concurrent store
// (de)activations never interleave mid-computation.
func (i *Index) Snapshot() *Snapshot {
	return &Snapshot{state: i.state.Load(), cellSizeDeg: i.cellSizeDeg}
}

func (i *Index) cell(lat, lon float64) cellKey {
	return cellKey{
		x: int(math.Floor(lon / i.cellSizeDeg)),
		y: int(math.Floor(lat / i.cellSizeDeg)),
	}
}

// cloneWithout copies the state, excluding storeID if present.
func (i *Index) cloneWithout(cur *indexState, storeID string) *indexState {
	next := &indexState{
		cells:     make(map[cellKey][]storePoint, len(cur.cells)),
		locations: make(map[string]storePoint, len(cur.locations)+1),
	}
	for id, p := range cur.locations {
		if id == storeID {
			continue
		}
		next.locations[id] = p
	}
	for k, pts := range cur.cells {
		kept := make([]storePoint, 0, len(pts))
		for _, p := range pts {
			if p.storeID == storeID {
				continue
			}
			kept = append(kept, p)
		}
		if len(kept) > 0 {
			next.cells[k] = kept
		}
	}
	return next
}

// Snapshot is an immutable view of the index at a point in time.
type Snapshot struct {
	state       *indexState
	cellSizeDeg float64
}

// Candidates returns exactly the stores within radiusMeters of the given
// point, ordered by distance ascending (store ID breaks exact ties).
// An empty result is a valid answer, not an error.
func (s *Snapshot) Candidates(lat, lon, radiusMeters float64) []models.GeoCandidate {
	if radiusMeters <= 0 {
		return nil
	}

	latDelta := radiusMeters / metersPerDegreeLat
	// Meters per degree of longitude shrink toward the poles.
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lonDelta := radiusMeters / (metersPerDegreeLat * cosLat)

	minX := int(math.Floor((lon - lonDelta) / s.cellSizeDeg))
	maxX := int(math.Floor((lon + lonDelta) / s.cellSizeDeg))
	minY := int(math.Floor((lat - latDelta) / s.cellSizeDeg))
	maxY := int(math.Floor((lat + latDelta) / s.cellSizeDeg))

	var out []models.GeoCandidate
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for _, p := range s.state.cells[cellKey{x: x, y: y}] {
				d := Haversine(lat, lon, p.lat, p.lon)
				if d <= radiusMeters {
					out = append(out, models.GeoCandidate{
						StoreID:        p.storeID,
						DistanceMeters: d,
					})
				}
			}
		}
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].DistanceMeters != out[b].DistanceMeters {
			return out[a].DistanceMeters < out[b].DistanceMeters
		}
		return out[a].StoreID < out[b].StoreID
	})
	return out
}
