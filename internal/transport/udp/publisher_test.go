// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"tuner/internal/analysis"
)

func TestEncodePacket(t *testing.T) {
	reading := analysis.Reading{
		Frequency:  440.5,
		Confidence: 0.93,
		Valid:      true,
		Midi:       69,
		Cents:      1.97,
	}

	var buf bytes.Buffer
	encodePacket(&buf, 7, reading)

	data := buf.Bytes()
	if len(data) != 35 {
		t.Fatalf("Packet should be 35 bytes, got %d", len(data))
	}

	if magic := binary.BigEndian.Uint32(data[0:4]); magic != packetMagic {
		t.Errorf("Magic: got %08x, want %08x", magic, packetMagic)
	}
	if seq := binary.BigEndian.Uint32(data[4:8]); seq != 7 {
		t.Errorf("Sequence: got %d, want 7", seq)
	}
	if data[8] != 1 {
		t.Errorf("Valid flag: got %d, want 1", data[8])
	}
	if midi := int16(binary.BigEndian.Uint16(data[9:11])); midi != 69 {
		t.Errorf("MIDI: got %d, want 69", midi)
	}
	if freq := math.Float64frombits(binary.BigEndian.Uint64(data[11:19])); freq != 440.5 {
		t.Errorf("Frequency: got %f, want 440.5", freq)
	}
	if conf := math.Float64frombits(binary.BigEndian.Uint64(data[19:27])); conf != 0.93 {
		t.Errorf("Confidence: got %f, want 0.93", conf)
	}
	if cents := math.Float64frombits(binary.BigEndian.Uint64(data[27:35])); cents != 1.97 {
		t.Errorf("Cents: got %f, want 1.97", cents)
	}
}

func TestEncodePacketInvalidReading(t *testing.T) {
	var buf bytes.Buffer
	encodePacket(&buf, 1, analysis.Reading{})

	data := buf.Bytes()
	if data[8] != 0 {
		t.Errorf("Invalid reading should carry valid=0, got %d", data[8])
	}
}
