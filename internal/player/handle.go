package player

import (
	"sync"
	"time"
)

// EventSink receives lifecycle events from an audio handle. The controller
// implements it.
type EventSink interface {
	HandleTimeUpdate(currentTime, duration float64)
	HandleEnded()
}

// DurationFunc resolves a source URL to a track length in seconds. SimHandle
// falls back to a fixed default when nil or when the resolver returns 0.
type DurationFunc func(url string) float64

const defaultTrackSeconds = 180

// SimHandle is a clock-driven AudioHandle for environments without a real
// media backend (the terminal player). It advances a playhead on a ticker
// and reports time updates and completion to its sink, mirroring the event
// surface of a browser audio element.
type SimHandle struct {
	mu       sync.Mutex
	sink     EventSink
	resolve  DurationFunc
	interval time.Duration

	src     string
	pos     float64
	dur     float64
	volume  float64
	loop    bool
	playing bool

	stop chan struct{}
}

// NewSimHandle creates a simulated handle ticking at the given interval
// (defaults to 500ms).
func NewSimHandle(resolve DurationFunc, interval time.Duration) *SimHandle {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &SimHandle{resolve: resolve, interval: interval, volume: 1.0}
}

// Attach registers the event sink. Must be called before playback starts.
func (h *SimHandle) Attach(sink EventSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sink = sink
}

// SetSource points the handle at a new resource, abandoning any playback in
// progress.
func (h *SimHandle) SetSource(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopLocked()
	h.src = url
	h.pos = 0
	h.dur = 0
	if h.resolve != nil {
		h.dur = h.resolve(url)
	}
	if h.dur <= 0 {
		h.dur = defaultTrackSeconds
	}
}

// Play starts or resumes the playback clock.
func (h *SimHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.playing {
		return nil
	}

	h.playing = true
	h.stop = make(chan struct{})
	go h.run(h.stop)
	return nil
}

// Pause halts the playback clock, keeping the position.
func (h *SimHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
}

// Seek repositions the simulated playhead.
func (h *SimHandle) Seek(seconds float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if seconds < 0 {
		seconds = 0
	}
	if seconds > h.dur {
		seconds = h.dur
	}
	h.pos = seconds
}

// SetVolume records the volume; the simulation has no audible output.
func (h *SimHandle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = v
}

// SetLoop toggles looping on track completion.
func (h *SimHandle) SetLoop(loop bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loop = loop
}

// Close stops the playback clock.
func (h *SimHandle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
}

func (h *SimHandle) stopLocked() {
	if h.stop != nil {
		close(h.stop)
		h.stop = nil
	}
	h.playing = false
}

func (h *SimHandle) run(stop chan struct{}) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.mu.Lock()
			if !h.playing {
				h.mu.Unlock()
				return
			}

			h.pos += h.interval.Seconds()
			ended := h.pos >= h.dur
			if ended {
				if h.loop {
					h.pos = 0
					ended = false
				} else {
					h.pos = h.dur
					h.stopLocked()
				}
			}
			pos, dur, sink := h.pos, h.dur, h.sink
			h.mu.Unlock()

			if sink != nil {
				sink.HandleTimeUpdate(pos, dur)
				if ended {
					sink.HandleEnded()
					return
				}
			} else if ended {
				return
			}
		}
	}
}
