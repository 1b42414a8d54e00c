package pbf

import "math"

const metersPerDegree = 111000

// BoundedBBoxArea estimates a way's footprint in square meters from at most
// sampleCap leading points. The cap trades exactness for bounded work on
// degenerate multi-thousand-vertex ways; for real buildings the prefix is
// the whole geometry. Returns 0 when fewer than two usable points exist.
func BoundedBBoxArea(points []Point, sampleCap int) float64 {
	if sampleCap <= 0 {
		sampleCap = len(points)
	}

	var (
		minLat, maxLat float64
		minLon, maxLon float64
		n              int
	)
	for _, p := range points {
		if p.Lat == 0 && p.Lon == 0 {
			// Unresolved vertex; the extract carried no location for it.
			continue
		}
		if n == 0 {
			minLat, maxLat = p.Lat, p.Lat
			minLon, maxLon = p.Lon, p.Lon
		} else {
			minLat = math.Min(minLat, p.Lat)
			maxLat = math.Max(maxLat, p.Lat)
			minLon = math.Min(minLon, p.Lon)
			maxLon = math.Max(maxLon, p.Lon)
		}
		n++
		if n >= sampleCap {
			break
		}
	}
	if n < 2 {
		return 0
	}

	midLat := (minLat + maxLat) / 2 * math.Pi / 180
	latMeters := (maxLat - minLat) * metersPerDegree
	lonMeters := (maxLon - minLon) * metersPerDegree * math.Cos(midLat)
	return math.Abs(latMeters) * math.Abs(lonMeters)
}
