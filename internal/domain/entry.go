package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the recorded outcome of a routing attempt.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
	StatusPending Status = "PENDING"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusPending:
		return true
	}
	return false
}

func ParseStatusFromString(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}
	return st, nil
}

const (
	minPort = 1
	maxPort = 65535
)

// RoutingLogEntry is one recorded delivery attempt for an HL7 message.
// Entries are append-only; a retry is a new entry sharing MessageID.
type RoutingLogEntry struct {
	ID              int64
	MessageID       string
	ChannelID       *string
	DestinationHost *string
	DestinationPort *int
	Status          Status
	ErrorMessage    *string
	SentTime        *time.Time
	ReceivedTime    *time.Time
	CreatedAt       time.Time

	MessageType          *string
	SendingApplication   *string
	SendingFacility      *string
	ReceivingApplication *string
	ReceivingFacility    *string
}

// Validate enforces the append invariants. The status enumeration is
// deliberately checked here rather than by a database constraint; the
// status column itself stays free text for compatibility.
func (e *RoutingLogEntry) Validate() error {
	if strings.TrimSpace(e.MessageID) == "" {
		return fmt.Errorf("%w: message id is required", ErrValidation)
	}
	if !e.Status.IsValid() {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, e.Status)
	}
	if e.SentTime == nil {
		return fmt.Errorf("%w: sent time is required", ErrValidation)
	}

	if e.Status == StatusFailed {
		if e.ErrorMessage == nil || strings.TrimSpace(*e.ErrorMessage) == "" {
			return fmt.Errorf("%w: failed entry requires an error message", ErrValidation)
		}
	} else if e.ErrorMessage != nil {
		return fmt.Errorf("%w: error message is only allowed on failed entries", ErrValidation)
	}

	if e.Status == StatusPending && e.ReceivedTime != nil {
		return fmt.Errorf("%w: pending entry must not have a received time", ErrValidation)
	}

	if e.ReceivedTime != nil && e.ReceivedTime.Before(*e.SentTime) {
		return fmt.Errorf("%w: received time %s precedes sent time %s",
			ErrValidation, e.ReceivedTime.Format(time.RFC3339), e.SentTime.Format(time.RFC3339))
	}

	if e.DestinationPort != nil && (*e.DestinationPort < minPort || *e.DestinationPort > maxPort) {
		return fmt.Errorf("%w: destination port %d out of range", ErrValidation, *e.DestinationPort)
	}

	return nil
}

// EffectiveTime is the timestamp used for time-range queries: the received
// time when the outcome is known, the sent time while still pending.
func (e *RoutingLogEntry) EffectiveTime() time.Time {
	if e.ReceivedTime != nil {
		return *e.ReceivedTime
	}
	if e.SentTime != nil {
		return *e.SentTime
	}
	return e.CreatedAt
}
