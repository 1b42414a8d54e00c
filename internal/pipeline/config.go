package pipeline

// Config parameterizes one extraction run. The former fleet of near-copy
// worker variants differed only in these numbers.
type Config struct {
	// BatchSize is how many accepted candidates buffer before a flush.
	BatchSize int
	// AddressCap stops a job early but successfully once this many rows
	// have been persisted for its country.
	AddressCap int64
	// BBoxCeilingM2 rejects ways whose estimated footprint exceeds this
	// area in square meters.
	BBoxCeilingM2 float64
	// BBoxSampleCap bounds how many way vertices feed the bbox estimate.
	BBoxSampleCap int
	// NodeCheckEvery / WayCheckEvery set the memory-relief cadence. Ways
	// are costlier to decode, so they are checked more often.
	NodeCheckEvery int
	WayCheckEvery  int
	// ProgressEvery is the processed-record cadence for progress lines.
	ProgressEvery int64
}

func DefaultConfig() Config {
	return Config{
		BatchSize:      100,
		AddressCap:     300000,
		BBoxCeilingM2:  100,
		BBoxSampleCap:  100,
		NodeCheckEvery: 1000,
		WayCheckEvery:  100,
		ProgressEvery:  50000,
	}
}
