// Package player implements the transport controller: the component that
// owns the single audio output handle and all playback state.
//
// The controller is a four-state machine (idle, loading, playing, paused)
// driven from two directions: user transport actions (select, play/pause,
// seek, next, previous, shuffle, repeat, volume) and lifecycle events
// reported by the audio handle (time updates and track completion). No other
// component may touch the handle directly.
package player
