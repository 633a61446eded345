// Package diag measures frame timing and reports it to a title sink and the
// log.
package diag

import (
	"fmt"
	"sync"
	"time"

	"github.com/richinsley/goshaderdemos/logger"
	"go.uber.org/zap"
)

// Snapshot is the averaged timing of a reporting window.
type Snapshot struct {
	FPS    float64
	MsPerF float64
	Frames int64
}

func (s Snapshot) String() string {
	return fmt.Sprintf("%.0f fps %.2f ms", s.FPS, s.MsPerF)
}

// Overlay accumulates frame timings. Reports are emitted once per Interval.
type Overlay struct {
	Label    string
	Interval time.Duration

	mu      sync.Mutex
	sink    func(string)
	begin   time.Time
	window  time.Time
	busy    time.Duration
	count   int64
	total   int64
	last    Snapshot
	removed bool
}

// New creates an overlay that writes "label | stats" to sink. sink may be nil.
func New(label string, interval time.Duration, sink func(string)) *Overlay {
	if interval <= 0 {
		interval = time.Second
	}
	return &Overlay{Label: label, Interval: interval, sink: sink}
}

// Begin marks the start of a frame.
func (o *Overlay) Begin(now time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.begin = now
	if o.window.IsZero() {
		o.window = now
	}
}

// End marks the end of a frame and returns true when a report was emitted.
func (o *Overlay) End(now time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.removed || o.begin.IsZero() {
		return false
	}
	o.busy += now.Sub(o.begin)
	o.count++
	o.total++

	elapsed := now.Sub(o.window)
	if elapsed < o.Interval {
		return false
	}
	o.last = Snapshot{
		FPS:    float64(o.count) / elapsed.Seconds(),
		MsPerF: float64(o.busy.Microseconds()) / 1000 / float64(o.count),
		Frames: o.total,
	}
	o.window, o.busy, o.count = now, 0, 0

	logger.Log.Debug("Frame timing",
		zap.String("page", o.Label),
		zap.Float64("fps", o.last.FPS),
		zap.Float64("ms", o.last.MsPerF),
		zap.Int64("frames", o.last.Frames))
	if o.sink != nil {
		o.sink(o.Label + " | " + o.last.String())
	}
	return true
}

// Last returns the most recent report.
func (o *Overlay) Last() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// Remove stops reporting and restores the plain label.
func (o *Overlay) Remove() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.removed {
		return
	}
	o.removed = true
	if o.sink != nil {
		o.sink(o.Label)
	}
}
