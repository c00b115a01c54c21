package main

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"smscsim/pdu"
	"smscsim/sqlog"
)

// Protocol response codes returned to the submitting side. "00" is the
// only success code, the others identify the rejection cause.
const (
	codeOK             = "00"
	codeMalformedHex   = "01"
	codeTruncatedPDU   = "02"
	codeBadAddressType = "03"
	codeMissingField   = "04"
)

var errMissingField = errors.New("missing required field")

// Response is the JSON payload produced for every submission, simulation
// and reply.
type Response struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	MessageID    uint64 `json:"message_id"`
	ResponseCode string `json:"response_code"`
}

// SMSC orchestrates one request: validate, decode, allocate an identifier,
// append to the ledger and build the response. It owns no transport
// concerns, the HTTP layer calls plain methods.
type SMSC struct {
	ledger  *Ledger
	audit   *sqlog.DB // optional, nil without a configured DSN
	log     *logrus.Entry
	counter uint32 // reference counter for synthesized outgoing messages
}

func NewSMSC(ledger *Ledger, audit *sqlog.DB, log *logrus.Entry) *SMSC {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SMSC{ledger: ledger, audit: audit, log: log}
}

// Submit processes one hex-encoded submission. A decode failure still
// consumes an identifier and lands in the ledger as rejected; the caller
// always gets a well-formed response.
func (s *SMSC) Submit(rawHex, msisdn string) Response {
	rawHex = strings.TrimSpace(rawHex)
	msg := Message{
		Direction: DirectionReceived,
		MSISDN:    msisdn,
		RawHex:    rawHex,
	}
	decoded, err := pdu.Decode(rawHex)
	if err != nil {
		msg.Status = StatusRejected
		msg.ResponseCode = rejectionCode(err)
		id := s.ledger.Add(msg)
		s.record(msg, id)
		s.log.WithFields(logrus.Fields{"id": id, "code": msg.ResponseCode}).
			WithError(err).Warn("SMS rejected")
		return Response{
			Status:       "ERROR",
			Message:      err.Error(),
			MessageID:    id,
			ResponseCode: msg.ResponseCode,
		}
	}
	if msg.MSISDN == "" {
		msg.MSISDN = decoded.Address
	}
	msg.Status = StatusAccepted
	msg.Decoded = decoded
	msg.Text = decoded.Text
	msg.ResponseCode = codeOK
	id := s.ledger.Add(msg)
	s.record(msg, id)
	s.log.WithFields(logrus.Fields{
		"id":     id,
		"msisdn": msg.MSISDN,
		"type":   decoded.Type,
	}).Info("SMS received")
	return Response{
		Status:       "OK",
		Message:      "SMS received and processed",
		MessageID:    id,
		ResponseCode: codeOK,
	}
}

// SimulateOutgoing records a message as if the simulator had sent it to
// the external side. The raw hex is synthesized so the entry decodes like
// a real submission.
func (s *SMSC) SimulateOutgoing(destination, text string) Response {
	if destination == "" || text == "" {
		return s.rejectOutgoing(destination, "destination and message are required")
	}
	ref := byte(atomic.AddUint32(&s.counter, 1))
	msg := Message{
		Direction:    DirectionSent,
		Status:       StatusSimulated,
		MSISDN:       destination,
		RawHex:       pdu.EncodeSubmit(ref, destination, text),
		Text:         text,
		ResponseCode: codeOK,
	}
	id := s.ledger.Add(msg)
	s.record(msg, id)
	s.log.WithFields(logrus.Fields{"id": id, "destination": destination}).
		Info("Outgoing message simulated")
	return Response{
		Status:       "OK",
		Message:      "Outgoing message simulated successfully",
		MessageID:    id,
		ResponseCode: codeOK,
	}
}

// Reply records an operator reply to a previously received message.
func (s *SMSC) Reply(msisdn, text string, originalID uint64) Response {
	if msisdn == "" || text == "" {
		return s.rejectOutgoing(msisdn, "msisdn and message are required")
	}
	ref := byte(atomic.AddUint32(&s.counter, 1))
	msg := Message{
		Direction:    DirectionSent,
		Status:       StatusDelivered,
		MSISDN:       msisdn,
		RawHex:       pdu.EncodeSubmit(ref, msisdn, text),
		Text:         text,
		ReplyTo:      originalID,
		ResponseCode: codeOK,
	}
	id := s.ledger.Add(msg)
	s.record(msg, id)
	s.log.WithFields(logrus.Fields{"id": id, "msisdn": msisdn, "replyTo": originalID}).
		Info("SMS reply sent")
	return Response{
		Status:       "OK",
		Message:      "SMS reply sent successfully",
		MessageID:    id,
		ResponseCode: codeOK,
	}
}

// rejectOutgoing lands a missing-field failure in the ledger; the failed
// attempt still consumes an identifier.
func (s *SMSC) rejectOutgoing(msisdn, reason string) Response {
	msg := Message{
		Direction:    DirectionSent,
		Status:       StatusRejected,
		MSISDN:       msisdn,
		ResponseCode: codeMissingField,
	}
	id := s.ledger.Add(msg)
	s.record(msg, id)
	s.log.WithField("id", id).Warn("Outgoing message rejected: ", reason)
	return Response{
		Status:       "ERROR",
		Message:      fmt.Sprintf("%s: %s", errMissingField, reason),
		MessageID:    id,
		ResponseCode: codeMissingField,
	}
}

// ResetStats clears the ledger and counters and restarts the identifier
// sequence. Atomic relative to concurrent submissions, every message is
// counted entirely before or entirely after the reset.
func (s *SMSC) ResetStats() {
	s.ledger.Reset()
	s.log.Info("Statistics reset")
}

func rejectionCode(err error) string {
	switch {
	case errors.Is(err, pdu.ErrMalformedHex):
		return codeMalformedHex
	case errors.Is(err, pdu.ErrTruncatedPDU):
		return codeTruncatedPDU
	case errors.Is(err, pdu.ErrUnsupportedAddressType):
		return codeBadAddressType
	default:
		return codeMalformedHex
	}
}

func (s *SMSC) record(msg Message, id uint64) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Insert(id, string(msg.Direction), string(msg.Status),
		msg.MSISDN, msg.Text, msg.RawHex, msg.ResponseCode); err != nil {
		s.log.WithError(err).Error("Audit log insert failed")
	}
}
