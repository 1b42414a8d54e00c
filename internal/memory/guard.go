package memory

import (
	"log/slog"
	"runtime/debug"

	"github.com/shirou/gopsutil/v4/mem"

	"github.com/osmaddr/extractor/internal/common"
)

// Snapshot is a point-in-time view of system memory.
type Snapshot struct {
	UsedPercent    float64
	AvailableBytes uint64
	// TelemetryOK is false when the OS stats could not be read; callers
	// must degrade to the file-size admission policy instead of failing.
	TelemetryOK bool
}

// Guard observes process memory pressure for the extraction pipeline.
type Guard interface {
	Sample() Snapshot
	// ShouldAdmit decides whether an artifact of the given size may be
	// processed at all.
	ShouldAdmit(artifactBytes int64) bool
	// RequestRelief is called periodically mid-stream. Above the ceiling it
	// invokes flush, forces a reclaim pass, and re-samples. A false return
	// means usage is still above the critical ceiling and the caller should
	// stop early, keeping what it has.
	RequestRelief(flush func()) bool
}

type systemGuard struct {
	cfg    common.MemoryConfig
	logger *slog.Logger
	warned bool
}

func NewGuard(cfg common.MemoryConfig, logger *slog.Logger) Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &systemGuard{cfg: cfg, logger: logger}
}

func (g *systemGuard) Sample() Snapshot {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Snapshot{}
	}
	return Snapshot{
		UsedPercent:    vm.UsedPercent,
		AvailableBytes: vm.Available,
		TelemetryOK:    true,
	}
}

func (g *systemGuard) ShouldAdmit(artifactBytes int64) bool {
	snap := g.Sample()
	if !snap.TelemetryOK {
		// Conservative fixed size cap when the OS gives us nothing.
		if artifactBytes > g.cfg.MaxFileBytes {
			g.logger.Warn("memory.admit.rejected",
				"artifact_bytes", artifactBytes,
				"max_file_bytes", g.cfg.MaxFileBytes,
				"telemetry", false,
			)
			return false
		}
		return true
	}

	estimated := artifactBytes * g.cfg.EstimateFactor
	if uint64(estimated) >= snap.AvailableBytes || snap.UsedPercent >= g.cfg.CeilingPercent {
		g.logger.Warn("memory.admit.rejected",
			"artifact_bytes", artifactBytes,
			"estimated_bytes", estimated,
			"available_bytes", snap.AvailableBytes,
			"used_percent", snap.UsedPercent,
		)
		return false
	}
	return true
}

func (g *systemGuard) RequestRelief(flush func()) bool {
	snap := g.Sample()
	if !snap.TelemetryOK || snap.UsedPercent <= g.cfg.CeilingPercent {
		return true
	}

	if !g.warned {
		g.logger.Warn("memory.pressure.high", "used_percent", snap.UsedPercent)
		g.warned = true
	}
	if flush != nil {
		flush()
	}
	debug.FreeOSMemory()

	snap = g.Sample()
	if snap.TelemetryOK && snap.UsedPercent > g.cfg.CriticalPercent {
		g.logger.Error("memory.pressure.critical", "used_percent", snap.UsedPercent)
		return false
	}
	return true
}
