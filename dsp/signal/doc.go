// Package signal generates the carrier and modulator signals that drive the
// vocoder.
//
// [Oscillator] is a sample-at-a-time phase accumulator for streaming use.
package signal
