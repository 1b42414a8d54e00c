package pbf

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"github.com/osmaddr/extractor/internal/common"
)

// Tags is a key-value view of an element's tag set. Nil for untagged
// elements.
type Tags map[string]string

// Point is one resolved way vertex.
type Point struct {
	Lat float64
	Lon float64
}

// Node is a tagged point element.
type Node struct {
	Tags Tags
	Lat  float64
	Lon  float64
}

// Way is a tagged line/area element with its resolved vertices in file
// order.
type Way struct {
	Tags   Tags
	Points []Point
}

// Handler receives elements one at a time in file order. Returning false
// stops the decode promptly; the decoder checks after every element.
type Handler interface {
	HandleNode(n Node) bool
	HandleWay(w Way) bool
}

// Decoder streams a PBF extract through a Handler in a single forward pass.
// Decoding is strictly sequential: one goroutine walks the file, nothing is
// materialized beyond the element currently in flight. Parallelism belongs
// to independent worker processes over independent files, never inside one
// decode.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode walks the file at path, invoking the handler per node and way.
// Relations are skipped. A handler-requested stop returns nil; a truncated
// or corrupt stream returns a wrapped decode error.
func (d *Decoder) Decode(ctx context.Context, path string, h Handler) error {
	f, err := os.Open(path)
	if err != nil {
		return common.WrapError(err, "open artifact")
	}
	defer f.Close()

	scanner := osmpbf.New(ctx, f, 1)
	defer scanner.Close()
	scanner.SkipRelations = true

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			if !h.HandleNode(Node{Tags: tagMap(o.Tags), Lat: o.Lat, Lon: o.Lon}) {
				return nil
			}
		case *osm.Way:
			if !h.HandleWay(Way{Tags: tagMap(o.Tags), Points: wayPoints(o.Nodes)}) {
				return nil
			}
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return ctx.Err()
}

func tagMap(tags osm.Tags) Tags {
	if len(tags) == 0 {
		return nil
	}
	m := make(Tags, len(tags))
	for _, t := range tags {
		m[t.Key] = t.Value
	}
	return m
}

func wayPoints(nodes osm.WayNodes) []Point {
	if len(nodes) == 0 {
		return nil
	}
	pts := make([]Point, 0, len(nodes))
	for _, n := range nodes {
		pts = append(pts, Point{Lat: n.Lat, Lon: n.Lon})
	}
	return pts
}

// IsMemoryError reports whether a decode failure looks like resource
// exhaustion rather than corrupt input. Mirrors the bad_alloc sniffing the
// extraction used to do against its native parser.
func IsMemoryError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "memory") ||
		strings.Contains(msg, "cannot allocate") ||
		strings.Contains(msg, "bad_alloc")
}
