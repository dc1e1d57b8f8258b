// SPDX-License-Identifier: MIT
package analysis

// SampleProcessor is the standard interface for components consuming raw
// audio blocks. Implementations must be real-time safe: the caller is the
// audio callback.
type SampleProcessor interface {
	Process(block []float32)
}

// ClosableProcessor combines SampleProcessor with resource cleanup.
type ClosableProcessor interface {
	SampleProcessor
	Close() error
}

// ResultProvider exposes the latest pitch reading to consumers (display,
// transports) without coupling them to the Dispatcher.
type ResultProvider interface {
	ReadLatest() (frequency, confidence float64, ok bool)
}
