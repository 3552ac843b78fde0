// Package features defines the audio feature records that drive every visual
// layer, and the samplers that produce them.
//
// A [Sampler] is a pure function of time for a fixed audio source: asking for
// the same timestamp twice returns the same [Record]. Feature extraction itself
// (decoding, beat tracking) happens upstream; this package only models the
// result:
//
//   - [Record]: immutable per-tick snapshot (waveform, spectrum, scalars)
//   - [Track]: precomputed records at a fixed hop rate, random access
//   - [Synth]: deterministic synthetic source for demos and tests
//   - [Safe]: guard that turns missing or failing samplers into silence
//
// # Example
//
//	src := features.NewSynth(features.DefaultSynthConfig())
//	rec := features.Safe(src, nil).Sample(1.25)
package features
