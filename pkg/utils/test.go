package utils

import "math"

// MockTransport implements the transport interface for testing. It records
// every payload handed to Send instead of transmitting.
type MockTransport struct {
	LastData  any
	SendCount int
}

// Send stores the data for later inspection.
func (m *MockTransport) Send(data any) error {
	m.LastData = data
	m.SendCount++
	return nil
}

// Close is a no-op.
func (m *MockTransport) Close() error {
	return nil
}

// GenerateSineWave returns size samples of a unit-amplitude sine at the
// given frequency.
func GenerateSineWave(size int, sampleRate, frequency float64) []float32 {
	return GenerateSineWaveAmp(size, sampleRate, frequency, 1.0)
}

// GenerateSineWaveAmp returns size samples of a sine at the given frequency
// and amplitude.
func GenerateSineWaveAmp(size int, sampleRate, frequency, amplitude float64) []float32 {
	buffer := make([]float32, size)
	angular := 2.0 * math.Pi * frequency / sampleRate
	for i := range buffer {
		buffer[i] = float32(amplitude * math.Sin(angular*float64(i)))
	}
	return buffer
}

// GenerateHarmonicWave returns a fundamental plus its second harmonic at
// the given relative amplitude. Used to exercise octave-error suppression.
func GenerateHarmonicWave(size int, sampleRate, fundamental, harmonicAmplitude float64) []float32 {
	buffer := make([]float32, size)
	angular := 2.0 * math.Pi * fundamental / sampleRate
	for i := range buffer {
		t := float64(i)
		buffer[i] = float32(math.Sin(angular*t) + harmonicAmplitude*math.Sin(2.0*angular*t))
	}
	return buffer
}

// CentsBetween returns the logarithmic distance between two frequencies in
// cents.
func CentsBetween(f1, f2 float64) float64 {
	return 1200.0 * math.Log2(f1/f2)
}
