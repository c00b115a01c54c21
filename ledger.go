package main

import (
	"sync"
	"time"

	"github.com/samber/lo"

	"smscsim/pdu"
)

// Direction tells whether a message entered the simulator or was produced
// by it.
type Direction string

const (
	DirectionReceived Direction = "received"
	DirectionSent     Direction = "sent"
)

// Status is the terminal processing state of a message.
type Status string

const (
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusDelivered Status = "delivered"
	StatusSimulated Status = "simulated"
)

// Message is one ledger record. Records are immutable after insertion,
// corrections show up as new records.
type Message struct {
	ID           uint64       `json:"id"`
	Direction    Direction    `json:"direction"`
	Status       Status       `json:"status"`
	MSISDN       string       `json:"msisdn"`
	RawHex       string       `json:"raw_hex"`
	Decoded      *pdu.Message `json:"decoded,omitempty"`
	Text         string       `json:"text,omitempty"`
	ReplyTo      uint64       `json:"reply_to,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	ResponseCode string       `json:"response_code"`
}

// Filter narrows a ledger listing. Zero values match everything.
type Filter struct {
	Direction Direction
	Status    Status
}

// Ledger stores every processed message and the statistics counters
// derived from them. Identifier allocation, insertion and counter updates
// happen under one lock, so concurrent submissions always get distinct
// contiguous identifiers.
type Ledger struct {
	maxStored int

	mu       sync.RWMutex
	messages []Message
	nextID   uint64
	counts   statCounters
	started  time.Time
}

// NewLedger returns an empty ledger keeping at most maxStored messages.
// Older entries are dropped past the cap, identifiers keep increasing.
// maxStored <= 0 keeps everything.
func NewLedger(maxStored int) *Ledger {
	return &Ledger{
		maxStored: maxStored,
		started:   time.Now(),
	}
}

// Add allocates the next identifier, stamps the message and inserts it.
// The filled-in identifier is returned.
func (l *Ledger) Add(msg Message) uint64 {
	l.mu.Lock()
	l.nextID++
	msg.ID = l.nextID
	msg.Timestamp = time.Now()
	l.messages = append(l.messages, msg)
	if l.maxStored > 0 && len(l.messages) > l.maxStored {
		l.messages = l.messages[len(l.messages)-l.maxStored:]
	}
	l.counts.count(msg)
	l.mu.Unlock()
	return msg.ID
}

// List returns a snapshot of the stored messages matching the filter, in
// insertion order. Appends running concurrently may or may not be
// included, but never show up half-written.
func (l *Ledger) List(f Filter) []Message {
	l.mu.RLock()
	snapshot := make([]Message, len(l.messages))
	copy(snapshot, l.messages)
	l.mu.RUnlock()
	if f.Direction != "" {
		snapshot = lo.Filter(snapshot, func(m Message, _ int) bool {
			return m.Direction == f.Direction
		})
	}
	if f.Status != "" {
		snapshot = lo.Filter(snapshot, func(m Message, _ int) bool {
			return m.Status == f.Status
		})
	}
	return snapshot
}

// Len returns the number of stored messages.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Clear drops all stored messages and zeroes the derived counters. The
// identifier counter is kept, later messages continue the sequence.
func (l *Ledger) Clear() {
	l.mu.Lock()
	l.messages = nil
	l.counts = statCounters{}
	l.mu.Unlock()
}

// Reset is Clear plus a restart of the identifier sequence at 1. This is
// intentional for test repeatability: a production ledger would never
// reuse identifiers, the simulator does so that a test run after a reset
// sees the same identifiers every time. The start time is untouched,
// uptime keeps growing across resets.
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.messages = nil
	l.counts = statCounters{}
	l.nextID = 0
	l.mu.Unlock()
}
