package geo

import (
	"testing"

	"medicine-locator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	centerLat = 40.0
	centerLon = -74.0
)

// latOffset converts a north-south distance in meters to degrees.
func latOffset(meters float64) float64 {
	return meters / 111320.0
}

func activeStore(id string, lat, lon float64) models.Store {
	return models.Store{ID: id, Name: id, Latitude: lat, Longitude: lon, Active: true}
}

func TestHaversine(t *testing.T) {
	// One degree of latitude is about 111.2km everywhere.
	d := Haversine(40.0, -74.0, 41.0, -74.0)
	assert.InDelta(t, 111200, d, 500)

	assert.Zero(t, Haversine(40.0, -74.0, 40.0, -74.0))
}

func TestCandidatesWithinRadiusOrderedByDistance(t *testing.T) {
	idx := NewIndex()
	idx.Build([]models.Store{
		activeStore("far", centerLat+latOffset(4000), centerLon),
		activeStore("near", centerLat+latOffset(500), centerLon),
		activeStore("mid", centerLat-latOffset(2000), centerLon),
		activeStore("outside", centerLat+latOffset(9000), centerLon),
	})

	got := idx.Snapshot().Candidates(centerLat, centerLon, 5000)
	require.Len(t, got, 3)
	assert.Equal(t, "near", got[0].StoreID)
	assert.Equal(t, "mid", got[1].StoreID)
	assert.Equal(t, "far", got[2].StoreID)

	for _, c := range got {
		assert.LessOrEqual(t, c.DistanceMeters, 5000.0)
	}
}

func TestCandidatesEmptyRegion(t *testing.T) {
	idx := NewIndex()
	idx.Build([]models.Store{
		activeStore("lonely", centerLat+latOffset(20000), centerLon),
	})

	got := idx.Snapshot().Candidates(centerLat, centerLon, 1000)
	assert.Empty(t, got)
}

func TestBuildSkipsInactiveStores(t *testing.T) {
	idx := NewIndex()
	idx.Build([]models.Store{
		activeStore("open", centerLat, centerLon),
		{ID: "closed", Latitude: centerLat, Longitude: centerLon, Active: false},
	})

	got := idx.Snapshot().Candidates(centerLat, centerLon, 1000)
	require.Len(t, got, 1)
	assert.Equal(t, "open", got[0].StoreID)
}

func TestInsertAndRemove(t *testing.T) {
	idx := NewIndex()
	idx.Insert("s1", centerLat, centerLon)
	assert.Equal(t, 1, idx.Len())

	got := idx.Snapshot().Candidates(centerLat, centerLon, 1000)
	require.Len(t, got, 1)

	idx.Remove("s1")
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Snapshot().Candidates(centerLat, centerLon, 1000))

	// Removing twice is a no-op.
	idx.Remove("s1")
	assert.Equal(t, 0, idx.Len())
}

func TestInsertRelocatesStore(t *testing.T) {
	idx := NewIndex()
	idx.Insert("s1", centerLat, centerLon)
	idx.Insert("s1", centerLat+latOffset(30000), centerLon)

	assert.Equal(t, 1, idx.Len())
	assert.Empty(t, idx.Snapshot().Candidates(centerLat, centerLon, 1000))
	assert.Len(t, idx.Snapshot().Candidates(centerLat+latOffset(30000), centerLon, 1000), 1)
}

func TestSnapshotIsolatedFromMutations(t *testing.T) {
	idx := NewIndex()
	idx.Insert("s1", centerLat, centerLon)

	snap := idx.Snapshot()
	idx.Insert("s2", centerLat, centerLon)
	idx.Remove("s1")

	// The snapshot still sees exactly the state it was taken from.
	got := snap.Candidates(centerLat, centerLon, 1000)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].StoreID)

	fresh := idx.Snapshot().Candidates(centerLat, centerLon, 1000)
	require.Len(t, fresh, 1)
	assert.Equal(t, "s2", fresh[0].StoreID)
}

func TestCandidatesCrossCellBoundaries(t *testing.T) {
	idx := NewIndex()
	// Stores in a ring around the query point, spanning multiple grid
	// cells in every direction.
	idx.Insert("n", centerLat+latOffset(3000), centerLon)
	idx.Insert("s", centerLat-latOffset(3000), centerLon)
	idx.Insert("e", centerLat, centerLon+0.04)
	idx.Insert("w", centerLat, centerLon-0.04)

	got := idx.Snapshot().Candidates(centerLat, centerLon, 5000)
	assert.Len(t, got, 4)
}
