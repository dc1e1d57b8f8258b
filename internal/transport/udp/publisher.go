// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"tuner/internal/analysis"
	applog "tuner/internal/log"
	"tuner/internal/transport"
)

// Packet layout, big-endian:
//
//	offset 0  magic   uint32  "TUNR"
//	offset 4  seq     uint32
//	offset 8  valid   uint8
//	offset 9  midi    int16
//	offset 11 freq    float64
//	offset 19 conf    float64
//	offset 27 cents   float64
const packetMagic = uint32(0x54554E52) // "TUNR"

// Publisher periodically packs the latest reading into a binary packet
// and sends it over UDP, for visualizers that skip the WebSocket/JSON
// path.
type Publisher struct {
	sender   *Sender
	source   transport.ReadingSource
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	sequenceNum uint32

	// Reusable buffer for constructing packets.
	packetBuffer *bytes.Buffer
}

// NewPublisher creates a Publisher over the given sender and reading
// source. An interval <= 0 defaults to 16ms (~60Hz).
func NewPublisher(interval time.Duration, sender *Sender, source transport.ReadingSource) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("udp.Publisher: sender cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("udp.Publisher: reading source cannot be nil")
	}
	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("udp.Publisher: Invalid interval, defaulting to %s", interval)
	}

	return &Publisher{
		sender:       sender,
		source:       source,
		interval:     interval,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Start begins the periodic publishing goroutine. A second Start while
// running is a no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("udp.Publisher: Start called but already running")
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
				p.buildAndSendPacket()
			}
		}
	}()
}

// buildAndSendPacket packs the current reading and sends it.
func (p *Publisher) buildAndSendPacket() {
	reading, _ := p.source.Latest()

	p.packetBuffer.Reset()
	p.sequenceNum++
	encodePacket(p.packetBuffer, p.sequenceNum, reading)

	if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
		applog.Warnf("udp.Publisher: send failed: %v", err)
	}
}

// encodePacket writes the binary packet for a reading into buf.
func encodePacket(buf *bytes.Buffer, seq uint32, reading analysis.Reading) {
	valid := uint8(0)
	if reading.Valid {
		valid = 1
	}

	binary.Write(buf, binary.BigEndian, packetMagic)
	binary.Write(buf, binary.BigEndian, seq)
	binary.Write(buf, binary.BigEndian, valid)
	binary.Write(buf, binary.BigEndian, int16(reading.Midi))
	binary.Write(buf, binary.BigEndian, reading.Frequency)
	binary.Write(buf, binary.BigEndian, reading.Confidence)
	binary.Write(buf, binary.BigEndian, reading.Cents)
}

// Stop halts the publishing goroutine and waits for it to finish. The
// sender is not closed; the caller owns it.
func (p *Publisher) Stop() {
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
