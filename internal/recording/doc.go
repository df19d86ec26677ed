// Package recording turns recorder output files into import candidates.
//
// It scans the recording tree for video files, derives each file's room,
// title, timing, and broadcast session key from its metadata sidecar or, when
// no sidecar is available, from its file name and modification time. Session
// keys are deterministic so every run groups the same files into the same
// broadcast.
package recording
