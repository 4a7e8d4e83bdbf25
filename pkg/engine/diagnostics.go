package engine

import (
	"time"

	"github.com/fernglow/mascotcore/internal/log"
)

// maxRecentFaults bounds the in-tick fault ring so a misbehaving
// subscriber can't grow the diagnostics snapshot without limit.
const maxRecentFaults = 16

// Diagnostics is the per-frame operational snapshot (spec §6/§7): resource
// pressure metrics that degrade gracefully rather than error, plus the
// most recent subscriber/rasterizer faults the tick caught.
type Diagnostics struct {
	TickCount         uint64
	LastTickDuration  time.Duration
	ParticleOverflow  uint64
	DroppedCommands   uint64
	RejectedTempoEsts uint64
	RecentFaults      []error
}

func (e *Engine) recordFault(err error) {
	log.Warn("engine: in-tick fault", "err", err)
	e.diag.RecentFaults = append(e.diag.RecentFaults, err)
	if len(e.diag.RecentFaults) > maxRecentFaults {
		e.diag.RecentFaults = e.diag.RecentFaults[len(e.diag.RecentFaults)-maxRecentFaults:]
	}
}

// Diagnostics returns a snapshot of the engine's current diagnostics.
func (e *Engine) Diagnostics() Diagnostics {
	d := e.diag
	d.RecentFaults = append([]error(nil), e.diag.RecentFaults...)
	d.ParticleOverflow = e.particles.OverflowCount()
	return d
}
