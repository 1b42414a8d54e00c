package pbf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundedBBoxAreaEquatorSquare(t *testing.T) {
	// 10 m on a side near the equator.
	d := 10.0 / metersPerDegree
	points := []Point{
		{Lat: 0.001, Lon: 0.001},
		{Lat: 0.001 + d, Lon: 0.001},
		{Lat: 0.001 + d, Lon: 0.001 + d},
		{Lat: 0.001, Lon: 0.001 + d},
	}
	assert.InDelta(t, 100.0, BoundedBBoxArea(points, 100), 0.1)
}

func TestBoundedBBoxAreaShrinksWithLatitude(t *testing.T) {
	d := 10.0 / metersPerDegree
	at := func(lat float64) float64 {
		return BoundedBBoxArea([]Point{
			{Lat: lat, Lon: 1},
			{Lat: lat + d, Lon: 1 + d},
		}, 100)
	}
	assert.Less(t, at(60), at(0.001))
	// cos(60°) halves the longitudinal span.
	assert.InDelta(t, 50.0, at(60), 0.5)
}

func TestBoundedBBoxAreaFewPoints(t *testing.T) {
	assert.Zero(t, BoundedBBoxArea(nil, 100))
	assert.Zero(t, BoundedBBoxArea([]Point{{Lat: 1, Lon: 1}}, 100))
}

func TestBoundedBBoxAreaSkipsUnresolvedVertices(t *testing.T) {
	d := 10.0 / metersPerDegree
	points := []Point{
		{}, // no location in the extract
		{Lat: 1, Lon: 1},
		{},
		{Lat: 1 + d, Lon: 1 + d},
	}
	assert.Greater(t, BoundedBBoxArea(points, 100), 0.0)

	onlyUnresolved := []Point{{}, {}, {}}
	assert.Zero(t, BoundedBBoxArea(onlyUnresolved, 100))
}

func TestBoundedBBoxAreaSampleCap(t *testing.T) {
	d := 10.0 / metersPerDegree
	points := []Point{
		{Lat: 1, Lon: 1},
		{Lat: 1 + d, Lon: 1 + d},
		// Beyond the cap; would blow the bbox up if sampled.
		{Lat: 5, Lon: 5},
	}
	capped := BoundedBBoxArea(points, 2)
	full := BoundedBBoxArea(points, 0)
	assert.Less(t, capped, 101.0)
	assert.Greater(t, full, capped)
}
