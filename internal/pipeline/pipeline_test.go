package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmaddr/extractor/internal/entity"
	"github.com/osmaddr/extractor/internal/memory"
	"github.com/osmaddr/extractor/internal/pbf"
)

type fakeStore struct {
	saved    []entity.StoredAddress
	shortBy  int64
	batches  int
	failNext error
}

func (s *fakeStore) Save(_ context.Context, batch []entity.StoredAddress) (int64, error) {
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return 0, err
	}
	s.saved = append(s.saved, batch...)
	s.batches++
	n := int64(len(batch)) - s.shortBy
	if n < 0 {
		n = 0
	}
	return n, nil
}

func (s *fakeStore) CountForCountry(context.Context, string) (int64, error) {
	return int64(len(s.saved)), nil
}

func (s *fakeStore) CountAll(context.Context) (int64, error) {
	return int64(len(s.saved)), nil
}

type fakeGuard struct {
	denyAfter int
	calls     int
	flushed   bool
}

func (g *fakeGuard) Sample() memory.Snapshot     { return memory.Snapshot{TelemetryOK: true} }
func (g *fakeGuard) ShouldAdmit(int64) bool      { return true }
func (g *fakeGuard) RequestRelief(flush func()) bool {
	g.calls++
	if g.denyAfter > 0 && g.calls >= g.denyAfter {
		if flush != nil {
			flush()
			g.flushed = true
		}
		return false
	}
	return true
}

func testJob() Job {
	return Job{CountryCode: "US", CountryName: "United States", WorkerID: "w1"}
}

func newTestExtractor(cfg Config, store *fakeStore, guard memory.Guard) *Extractor {
	if guard == nil {
		guard = &fakeGuard{}
	}
	return NewExtractor(cfg, testJob(), store, guard, nil)
}

func houseTags(number string) pbf.Tags {
	return pbf.Tags{
		"building":         "house",
		"addr:street":      "Main St",
		"addr:housenumber": number,
		"addr:city":        "Springfield",
		"addr:country":     "US",
	}
}

func TestNodeWithFullAddressTagsIsAccepted(t *testing.T) {
	store := &fakeStore{}
	ext := newTestExtractor(DefaultConfig(), store, nil)

	cont := ext.HandleNode(pbf.Node{Tags: houseTags("12")})
	require.True(t, cont)
	assert.Equal(t, int64(1), ext.Found())

	require.NoError(t, ext.finish())
	require.Len(t, store.saved, 1)
	got := store.saved[0]
	assert.Equal(t, "12 Main St, Springfield, United States", got.FullAddress)
	assert.Equal(t, "Springfield", got.City)
	assert.Equal(t, "Main St", got.StreetName)
	assert.Equal(t, "US", got.Country)
	assert.Equal(t, "United States", got.CountryName)
	assert.Equal(t, "w1", got.WorkerID)
	assert.Equal(t, StateDone, ext.State())
}

func TestNodeWithoutCityIsRejected(t *testing.T) {
	tags := houseTags("12")
	delete(tags, "addr:city")

	store := &fakeStore{}
	ext := newTestExtractor(DefaultConfig(), store, nil)

	cont := ext.HandleNode(pbf.Node{Tags: tags})
	require.True(t, cont)
	assert.Zero(t, ext.Found())
	require.NoError(t, ext.finish())
	assert.Empty(t, store.saved)
}

func TestNodeWithPlaceholderCityIsRejected(t *testing.T) {
	tags := houseTags("12")
	tags["addr:city"] = "Unknown"

	ext := newTestExtractor(DefaultConfig(), &fakeStore{}, nil)
	ext.HandleNode(pbf.Node{Tags: tags})
	assert.Zero(t, ext.Found())
}

func TestUntaggedElementsAreCheap(t *testing.T) {
	ext := newTestExtractor(DefaultConfig(), &fakeStore{}, nil)
	for i := 0; i < 10; i++ {
		require.True(t, ext.HandleNode(pbf.Node{}))
	}
	assert.Equal(t, int64(10), ext.Processed())
	assert.Zero(t, ext.Found())
}

// Patch of points roughly sideMeters on each edge near the equator.
func squareWay(sideMeters float64) []pbf.Point {
	d := sideMeters / 111000
	return []pbf.Point{
		{Lat: 1.0, Lon: 1.0},
		{Lat: 1.0 + d, Lon: 1.0},
		{Lat: 1.0 + d, Lon: 1.0 + d},
		{Lat: 1.0, Lon: 1.0 + d},
	}
}

func TestOversizedWayIsRejectedBeforeExtraction(t *testing.T) {
	store := &fakeStore{}
	ext := newTestExtractor(DefaultConfig(), store, nil)

	cont := ext.HandleWay(pbf.Way{Tags: houseTags("12"), Points: squareWay(13)}) // ~169 m²
	require.True(t, cont)
	assert.Zero(t, ext.Found())
}

func TestSmallWayIsAccepted(t *testing.T) {
	store := &fakeStore{}
	ext := newTestExtractor(DefaultConfig(), store, nil)

	ext.HandleWay(pbf.Way{Tags: houseTags("12"), Points: squareWay(3)}) // ~9 m²
	assert.Equal(t, int64(1), ext.Found())
}

func melbourneTags(i int) pbf.Tags {
	return pbf.Tags{
		"building":         "house",
		"addr:street":      "Collins Street",
		"addr:housenumber": fmt.Sprintf("%d", 1000+i),
		"addr:city":        "Melbourne",
		"addr:country":     "AU",
	}
}

func TestCapStopsDecodePromptly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 5
	cfg.AddressCap = 10

	store := &fakeStore{}
	ext := newTestExtractor(cfg, store, nil)

	for i := 0; i < 10; i++ {
		cont := ext.HandleNode(pbf.Node{Tags: melbourneTags(i)})
		if i < 9 {
			require.True(t, cont, "record %d", i)
		} else {
			require.False(t, cont, "cap record must stop the decoder")
		}
	}

	assert.Equal(t, StateLimitReached, ext.State())
	assert.Equal(t, int64(10), ext.TotalSaved())
	require.Len(t, store.saved, 10)

	// Terminal state: further callbacks are no-ops that keep saying stop.
	require.False(t, ext.HandleNode(pbf.Node{Tags: melbourneTags(99)}))
	assert.Equal(t, int64(10), ext.Found())
}

func TestFinalFlushTruncatesToCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 100
	cfg.AddressCap = 7

	store := &fakeStore{}
	ext := newTestExtractor(cfg, store, nil)

	for i := 0; i < 10; i++ {
		ext.HandleNode(pbf.Node{Tags: melbourneTags(i)})
	}
	require.NoError(t, ext.finish())

	assert.Equal(t, StateLimitReached, ext.State())
	assert.Equal(t, int64(7), ext.TotalSaved())
	assert.Len(t, store.saved, 7)
}

func TestMemoryPressureFlushesAndStops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 100
	cfg.NodeCheckEvery = 10

	store := &fakeStore{}
	guard := &fakeGuard{denyAfter: 1}
	ext := newTestExtractor(cfg, store, guard)

	var lastCont bool
	for i := 0; i < 10; i++ {
		lastCont = ext.HandleNode(pbf.Node{Tags: melbourneTags(i)})
	}

	require.False(t, lastCont)
	assert.True(t, guard.flushed)
	assert.Equal(t, StateLimitReached, ext.State())
	// The record that triggered the check is never processed.
	assert.Equal(t, int64(9), ext.TotalSaved())
	assert.Len(t, store.saved, 9)
}

func TestSavedTotalTracksRowsActuallyInserted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 5

	store := &fakeStore{shortBy: 1} // one duplicate per batch
	ext := newTestExtractor(cfg, store, nil)

	for i := 0; i < 5; i++ {
		ext.HandleNode(pbf.Node{Tags: melbourneTags(i)})
	}
	assert.Equal(t, int64(4), ext.TotalSaved())
}

func TestStoreFailureSurfacesAndStops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 2

	store := &fakeStore{failNext: fmt.Errorf("connection reset")}
	ext := newTestExtractor(cfg, store, nil)

	ext.HandleNode(pbf.Node{Tags: melbourneTags(0)})
	cont := ext.HandleNode(pbf.Node{Tags: melbourneTags(1)})
	assert.False(t, cont)
	assert.Error(t, ext.finish())
}

func TestCountryFallsBackToJobWhenTagMissing(t *testing.T) {
	tags := houseTags("12")
	delete(tags, "addr:country")

	store := &fakeStore{}
	ext := newTestExtractor(DefaultConfig(), store, nil)
	ext.HandleNode(pbf.Node{Tags: tags})
	require.NoError(t, ext.finish())

	require.Len(t, store.saved, 1)
	assert.Equal(t, "12 Main St, Springfield, United States", store.saved[0].FullAddress)
}

func TestUnrecognizedCountryTagUsesJobName(t *testing.T) {
	tags := houseTags("12")
	tags["addr:country"] = "ZZ"

	store := &fakeStore{}
	ext := newTestExtractor(DefaultConfig(), store, nil)
	ext.HandleNode(pbf.Node{Tags: tags})
	require.NoError(t, ext.finish())

	require.Len(t, store.saved, 1)
	assert.Equal(t, "12 Main St, Springfield, United States", store.saved[0].FullAddress)
}
