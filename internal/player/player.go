package player

import (
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunify/internal/catalog"
	"github.com/desertthunder/tunify/internal/models"
)

// AudioHandle abstracts the single audio output. Reassigning the source is
// itself the cancellation signal for any in-flight load; the backing media
// stack is expected to abandon the prior one.
type AudioHandle interface {
	SetSource(url string)
	Play() error
	Pause()
	Seek(seconds float64)
	SetVolume(v float64)
	SetLoop(loop bool)
}

// TimeUpdateFunc receives position/duration refreshes from the handle.
type TimeUpdateFunc func(currentTime, duration float64)

// EndedFunc is invoked when the current track finishes.
type EndedFunc func()

// Controller owns playback state and the audio handle. All mutation happens
// through its methods; callers observe state via Snapshot.
type Controller struct {
	mu      sync.Mutex
	handle  AudioHandle
	catalog *catalog.Catalog
	logger  *log.Logger

	// intn picks a uniform index for shuffle; injectable for tests.
	intn func(n int) int

	state       models.TransportState
	current     *models.Song
	index       int
	currentTime float64
	duration    float64
	volume      float64
	shuffle     bool
	repeat      bool

	onTimeUpdate []TimeUpdateFunc
	onEnded      []EndedFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithRandFunc replaces the shuffle index source.
func WithRandFunc(intn func(n int) int) Option {
	return func(c *Controller) { c.intn = intn }
}

// New creates a controller bound to the given handle and catalog.
func New(handle AudioHandle, cat *catalog.Catalog, logger *log.Logger, opts ...Option) *Controller {
	c := &Controller{
		handle:  handle,
		catalog: cat,
		logger:  logger,
		intn:    rand.IntN,
		state:   models.Idle,
		index:   -1,
		volume:  1.0,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnTimeUpdate registers a subscriber for position/duration refreshes.
func (c *Controller) OnTimeUpdate(fn TimeUpdateFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTimeUpdate = append(c.onTimeUpdate, fn)
}

// OnEnded registers a subscriber for track completion.
func (c *Controller) OnEnded(fn EndedFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEnded = append(c.onEnded, fn)
}

// Snapshot returns a copy of the current playback state.
func (c *Controller) Snapshot() models.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.PlaybackState{
		State:            c.state,
		CurrentSongIndex: c.index,
		IsPlaying:        c.state == models.Playing,
		CurrentTime:      c.currentTime,
		Duration:         c.duration,
		Volume:           c.volume,
		ShuffleEnabled:   c.shuffle,
		RepeatEnabled:    c.repeat,
	}
}

// Current returns the loaded song, if any.
func (c *Controller) Current() (models.Song, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return models.Song{}, false
	}
	return *c.current, true
}

// SelectSong loads and starts the given song from any state. The current
// index is recomputed by locating the song's id in the catalog; -1 (a stale
// reference) is a defined edge case, not an error. A failed start is logged
// and leaves the prior playback state unchanged.
func (c *Controller) SelectSong(song models.Song) {
	c.mu.Lock()
	c.load(song)
	c.mu.Unlock()
}

// load transitions to Loading, points the handle at the song, and attempts
// playback. Caller holds the lock.
func (c *Controller) load(song models.Song) {
	prevState := c.state
	prevSong := c.current
	prevIndex := c.index
	prevTime := c.currentTime
	prevDur := c.duration

	c.state = models.Loading
	c.handle.SetSource(song.AudioURL)

	if err := c.handle.Play(); err != nil {
		if c.logger != nil {
			c.logger.Error("playback failed", "song", song.Title, "error", err)
		}
		c.state = prevState
		c.current = prevSong
		c.index = prevIndex
		c.currentTime = prevTime
		c.duration = prevDur
		return
	}

	c.state = models.Playing
	c.current = &song
	c.index = c.catalog.IndexOf(song.ID)
	c.currentTime = 0
	c.duration = 0
}

// TogglePlayPause pauses a playing track or resumes a paused one. No-op when
// nothing is loaded.
func (c *Controller) TogglePlayPause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case models.Playing:
		c.handle.Pause()
		c.state = models.Paused
	case models.Paused:
		if err := c.handle.Play(); err != nil {
			if c.logger != nil {
				c.logger.Error("resume failed", "error", err)
			}
			return
		}
		c.state = models.Playing
	}
}

// Seek clamps t into [0, duration] and repositions the playhead. Valid while
// playing or paused.
func (c *Controller) Seek(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != models.Playing && c.state != models.Paused {
		return
	}

	t = clamp(t, 0, c.duration)
	c.handle.Seek(t)
	c.currentTime = t
}

// Next advances to the following track and auto-plays it. With shuffle on,
// the next index is uniform over the whole catalog and may repeat the
// current track. No-op when the catalog is empty.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance(1)
}

// Previous restarts the current track when more than five seconds in;
// otherwise it steps backward (or to a random track under shuffle) and
// auto-plays. The restart-on-recent-start behavior is deliberate transport
// policy.
func (c *Controller) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.catalog.Len() == 0 {
		return
	}

	if c.currentTime > 5 {
		c.handle.Seek(0)
		c.currentTime = 0
		return
	}

	c.advance(-1)
}

// advance moves the playhead by step tracks (cyclically) or to a random
// index under shuffle. Caller holds the lock.
func (c *Controller) advance(step int) {
	n := c.catalog.Len()
	if n == 0 {
		return
	}

	var next int
	if c.shuffle {
		next = c.intn(n)
	} else {
		next = ((c.index+step)%n + n) % n
	}

	song, ok := c.catalog.Get(next)
	if !ok {
		return
	}
	c.load(song)
}

// ToggleShuffle flips the shuffle flag.
func (c *Controller) ToggleShuffle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shuffle = !c.shuffle
}

// ToggleRepeat flips the repeat flag. While enabled the handle loops the
// current track itself instead of the controller advancing on completion.
func (c *Controller) ToggleRepeat() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.repeat = !c.repeat
	c.handle.SetLoop(c.repeat)
}

// SetVolume clamps v into [0, 1] and applies it immediately.
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v = clamp(v, 0, 1)
	c.handle.SetVolume(v)
	c.volume = v
}

// AdjustVolume shifts the volume by delta, clamped.
func (c *Controller) AdjustVolume(delta float64) {
	c.mu.Lock()
	v := clamp(c.volume+delta, 0, 1)
	c.handle.SetVolume(v)
	c.volume = v
	c.mu.Unlock()
}

// HandleTimeUpdate is the handle's periodic sync point: the sole place
// position and duration are refreshed.
func (c *Controller) HandleTimeUpdate(currentTime, duration float64) {
	c.mu.Lock()
	c.currentTime = currentTime
	c.duration = duration
	subs := make([]TimeUpdateFunc, len(c.onTimeUpdate))
	copy(subs, c.onTimeUpdate)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(currentTime, duration)
	}
}

// HandleEnded reacts to track completion. With repeat enabled the handle
// loops on its own and no advance happens here; otherwise the controller
// moves to the next track.
func (c *Controller) HandleEnded() {
	c.mu.Lock()
	subs := make([]EndedFunc, len(c.onEnded))
	copy(subs, c.onEnded)
	if !c.repeat {
		c.advance(1)
	} else {
		c.currentTime = 0
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
