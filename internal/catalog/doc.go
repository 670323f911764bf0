// Package catalog owns the session's ordered list of playable songs and the
// search filter over it.
//
// The catalog is assembled once at load time from the built-in static list
// plus rows fetched from the songs table, and grows only by appending
// session uploads. It is the single shared structure between playback and
// upload: one writer (the upload coordinator, via Append), many readers.
package catalog
