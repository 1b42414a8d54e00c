package worker

import (
	"fmt"
	"strings"

	"github.com/osmaddr/extractor/internal/countries"
	"github.com/osmaddr/extractor/internal/pipeline"
)

// Profile bundles the tunables that used to be spread across separate
// worker variants: batch size, output cap, bbox ceiling, memory ceilings,
// and the claim-order strategy.
type Profile struct {
	Name            string
	Pipeline        pipeline.Config
	ClaimOrder      countries.ClaimOrder
	CeilingPercent  float64
	CriticalPercent float64
}

// ProfileByName resolves a named parameter profile.
//
//	default        balanced settings for typical country extracts
//	memory-safe    small batches, frequent relief checks, small jobs first
//	huge-countries larger batches and a higher cap for continental extracts
func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(name) {
	case "", "default":
		return Profile{
			Name:            "default",
			Pipeline:        pipeline.DefaultConfig(),
			ClaimOrder:      countries.OrderCatalog,
			CeilingPercent:  85,
			CriticalPercent: 90,
		}, nil
	case "memory-safe":
		cfg := pipeline.DefaultConfig()
		cfg.BatchSize = 50
		cfg.NodeCheckEvery = 500
		cfg.WayCheckEvery = 50
		return Profile{
			Name:            "memory-safe",
			Pipeline:        cfg,
			ClaimOrder:      countries.OrderSmallestFirst,
			CeilingPercent:  80,
			CriticalPercent: 88,
		}, nil
	case "huge-countries":
		cfg := pipeline.DefaultConfig()
		cfg.BatchSize = 200
		cfg.AddressCap = 500000
		cfg.BBoxSampleCap = 50
		cfg.ProgressEvery = 100000
		return Profile{
			Name:            "huge-countries",
			Pipeline:        cfg,
			ClaimOrder:      countries.OrderCatalog,
			CeilingPercent:  85,
			CriticalPercent: 90,
		}, nil
	}
	return Profile{}, fmt.Errorf("unknown profile %q", name)
}
