// Package bank builds constant-Q bandpass filter banks.
//
// [Partition] splits a frequency range into N bins of equal width in
// log-frequency, so every bin spans the same frequency ratio:
//
//	delta  = (ln high - ln low) / N
//	from_i = exp(ln low + i*delta)
//	to_i   = exp(ln low + (i+1)*delta)
//	fc_i   = (from_i + to_i) / 2
//	q_i    = fc_i / (to_i - from_i)
//
// Adjacent bins share their edge value, so the bins tile [low, high) with no
// gaps or overlaps.
//
// [New] turns a partition into a [Bank] of [biquad.Filter] bandpass sections,
// one per bin, each tuned to fc_i with Q = qScale*q_i. qScale defaults to the
// empirically tuned 2 and applies uniformly to every band.
//
// Basic usage:
//
//	b, err := bank.New(44100) // 30 bands over 200..5000 Hz
//	if err != nil {
//	    return err
//	}
//	bands := make([][]float64, b.NumBands())
//	for i := range bands {
//	    bands[i] = make([]float64, 256)
//	}
//	err = b.Process(bands, block)
//
// A Bank owns its filters; each carries cross-block state, so one Bank must
// process exactly one continuous signal.
package bank
