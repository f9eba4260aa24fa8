// Package effects provides the channel vocoder effect.
//
// [Vocoder] splits a modulator and a carrier block into matching constant-Q
// bands (see package bank), measures one envelope per modulator band, scales
// the corresponding carrier band by it and sums the scaled bands into the
// output block.
//
// The engine is block based and pulled: an audio driver calls
// [Vocoder.Generate] once per fixed-size block. Scratch memory and filter
// state are sized at construction, so Generate never allocates.
package effects
