// Package shift provides a streaming phase-vocoder pitch-shift engine.
//
// Engine processes fixed-size audio blocks delivered by an audio runtime
// callback, one block per call, and carries a single smoothing buffer
// between calls. All work buffers are allocated once at construction; the
// per-block path is allocation-free.
package shift
