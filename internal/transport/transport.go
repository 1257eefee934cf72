// SPDX-License-Identifier: MIT
// Package transport publishes analysis frames to external consumers over
// WebSocket or UDP. Transports sit strictly outside the analysis core: they
// receive fully-formed payload snapshots from the consumer loop and never
// touch the analyzer's live buffers.
package transport

// Payload is one published analysis frame in wire-friendly form.
type Payload struct {
	Frame    uint32    `json:"frame"`
	Time     float32   `json:"time"`
	Volume   float32   `json:"volume"`
	Beat     bool      `json:"beat"`
	Spectrum []float32 `json:"spectrum"`
}

// Transport sends payloads to some sink. Implementations are thread-safe
// and must handle their own rate limiting.
type Transport interface {
	Send(p *Payload) error
	Close() error
}
