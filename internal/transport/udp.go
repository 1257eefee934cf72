// SPDX-License-Identifier: MIT
package transport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	applog "viscore/internal/log"
)

/*
UDP packet layout (BigEndian):

|<-- 4 -->|<---- 8 ---->|<-- 4 -->|<-- 4 -->|<- 1 ->|<-- 2 -->|<-- N*4 -->|
+---------+-------------+---------+---------+-------+---------+-----------+
|  Seq    |  Timestamp  |  Frame  | Volume  | Beat  |  Count  | Spectrum  |
| uint32  |    int64    | uint32  | float32 | byte  | uint16  | []float32 |
+---------+-------------+---------+---------+-------+---------+-----------+
*/

// UDPTransport packs analysis frames into a fixed binary layout and fires
// them at a single target address. Packets are built into a reusable buffer
// under the lock, so Send is safe for concurrent use.
type UDPTransport struct {
	mu     sync.Mutex
	conn   *net.UDPConn
	closed bool

	sequenceNum  uint32
	packetBuffer *bytes.Buffer
}

// NewUDPTransport dials the target address ("host:port") and returns the
// transport ready to send.
func NewUDPTransport(targetAddress string) (*UDPTransport, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address '%s': %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP for target '%s': %w", targetAddress, err)
	}

	applog.Infof("Transport: UDP sender connected to %s", conn.RemoteAddr())

	return &UDPTransport{
		conn:         conn,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Send packs the payload and transmits it as one UDP datagram.
func (t *UDPTransport) Send(p *Payload) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("UDP transport is closed")
	}

	t.sequenceNum++
	t.packetBuffer.Reset()

	beat := byte(0)
	if p.Beat {
		beat = 1
	}

	err := binary.Write(t.packetBuffer, binary.BigEndian, t.sequenceNum)
	if err == nil {
		err = binary.Write(t.packetBuffer, binary.BigEndian, time.Now().UnixNano())
	}
	if err == nil {
		err = binary.Write(t.packetBuffer, binary.BigEndian, p.Frame)
	}
	if err == nil {
		err = binary.Write(t.packetBuffer, binary.BigEndian, p.Volume)
	}
	if err == nil {
		err = binary.Write(t.packetBuffer, binary.BigEndian, beat)
	}
	if err == nil {
		err = binary.Write(t.packetBuffer, binary.BigEndian, uint16(len(p.Spectrum)))
	}
	if err == nil {
		err = binary.Write(t.packetBuffer, binary.BigEndian, p.Spectrum)
	}
	if err != nil {
		return fmt.Errorf("failed to pack UDP packet: %w", err)
	}

	if _, err := t.conn.Write(t.packetBuffer.Bytes()); err != nil {
		applog.Errorf("Transport: error sending UDP packet: %v", err)
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}

	applog.Debugf("Transport: sent UDP packet %d (%d bytes)", t.sequenceNum, t.packetBuffer.Len())
	return nil
}

// Close closes the underlying connection. Safe to call more than once.
func (t *UDPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if t.conn != nil {
		err := t.conn.Close()
		t.conn = nil
		if err != nil {
			return fmt.Errorf("failed to close UDP connection: %w", err)
		}
	}
	return nil
}

var _ Transport = (*UDPTransport)(nil)
