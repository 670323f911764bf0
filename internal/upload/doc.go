// Package upload coordinates new song submissions: validation, cooldown
// enforcement, asset uploads to object storage, video-link conversion, and
// the final metadata insert.
//
// Every failure is terminal for the submission attempt; the caller must
// resubmit. The whole pipeline threads a context so closing the form or
// shutting down aborts in-flight polling and network calls.
package upload
