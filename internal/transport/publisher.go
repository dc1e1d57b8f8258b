// SPDX-License-Identifier: MIT
package transport

import (
	"sync"
	"time"

	applog "tuner/internal/log"
)

// ReadingPublisher periodically fetches the latest reading and hands it
// to a Transport. It decouples transports from the audio thread: the
// producer only stores atomics, and this goroutine does the I/O.
type ReadingPublisher struct {
	source    ReadingSource
	transport Transport
	interval  time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // Protects ticker and doneChan during Start/Stop
}

// NewReadingPublisher creates a publisher sending through transport at
// the given interval. An interval <= 0 defaults to ~60 Hz.
func NewReadingPublisher(interval time.Duration, source ReadingSource, transport Transport) *ReadingPublisher {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &ReadingPublisher{
		source:    source,
		transport: transport,
		interval:  interval,
	}
}

// Start launches the publish loop. Safe to call once per Start/Stop
// cycle; a second Start while running is a no-op.
func (p *ReadingPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("ReadingPublisher: Start called but already running")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-doneChan:
				return
			case <-ticker.C:
				p.publishOnce()
			}
		}
	}()
}

// publishOnce sends the current reading. Invalid readings are sent too:
// clients need to know when the signal went away.
func (p *ReadingPublisher) publishOnce() {
	reading, _ := p.source.Latest()
	if err := p.transport.Send(reading); err != nil {
		applog.Warnf("ReadingPublisher: send failed: %v", err)
	}
}

// Stop halts the publish loop and waits for it to exit. The transport is
// not closed; the caller owns it.
func (p *ReadingPublisher) Stop() {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return
	}
	ticker := p.ticker
	doneChan := p.doneChan
	p.ticker = nil
	p.doneChan = nil
	p.mu.Unlock()

	p.stopOnce.Do(func() {
		ticker.Stop()
		close(doneChan)
	})
	p.wg.Wait()
}
