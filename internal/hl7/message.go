// Package hl7 provides the minimal HL7 v2 handling the routing log needs:
// reading the MSH header fields that describe a message and producing the
// ACK that answers it. It is not a general HL7 parser.
package hl7

import (
	"fmt"
	"strings"
	"time"
)

const (
	fieldSeparator   = "|"
	timestampLayout  = "20060102150405"
	minHeaderFields  = 10
	segmentSeparator = "\r"
)

// Header carries the MSH fields recorded in the routing log.
type Header struct {
	SendingApplication   string // MSH-3
	SendingFacility      string // MSH-4
	ReceivingApplication string // MSH-5
	ReceivingFacility    string // MSH-6
	Timestamp            *time.Time
	MessageType          string // MSH-9, e.g. ADT^A01
	ControlID            string // MSH-10
}

// ParseHeader reads the MSH segment of a raw HL7 message. Segments may be
// separated by CR (wire form) or LF (common in stored fixtures).
func ParseHeader(raw string) (*Header, error) {
	segment, err := mshSegment(raw)
	if err != nil {
		return nil, err
	}

	fields := strings.Split(segment, fieldSeparator)
	if len(fields) < minHeaderFields {
		return nil, fmt.Errorf("MSH segment has %d fields, need at least %d", len(fields), minHeaderFields)
	}

	h := &Header{
		SendingApplication:   strings.TrimSpace(fields[2]),
		SendingFacility:      strings.TrimSpace(fields[3]),
		ReceivingApplication: strings.TrimSpace(fields[4]),
		ReceivingFacility:    strings.TrimSpace(fields[5]),
		MessageType:          strings.TrimSpace(fields[8]),
		ControlID:            strings.TrimSpace(fields[9]),
	}

	if h.ControlID == "" {
		return nil, fmt.Errorf("MSH-10 message control id is empty")
	}

	if ts := strings.TrimSpace(fields[6]); ts != "" {
		// MSH-7 may carry sub-second precision or a timezone; the leading
		// fourteen digits are enough for the routing log.
		if len(ts) >= len(timestampLayout) {
			ts = ts[:len(timestampLayout)]
		}
		if parsed, parseErr := time.Parse(timestampLayout, ts); parseErr == nil {
			utc := parsed.UTC()
			h.Timestamp = &utc
		}
	}

	return h, nil
}

func mshSegment(raw string) (string, error) {
	normalized := strings.ReplaceAll(raw, "\r\n", segmentSeparator)
	normalized = strings.ReplaceAll(normalized, "\n", segmentSeparator)

	for _, segment := range strings.Split(normalized, segmentSeparator) {
		if strings.HasPrefix(segment, "MSH"+fieldSeparator) {
			return segment, nil
		}
	}

	return "", fmt.Errorf("message has no MSH segment")
}
