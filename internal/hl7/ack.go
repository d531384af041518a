package hl7

import (
	"fmt"
	"strings"
	"time"
)

// AckCode is the MSA-1 acknowledgment code.
type AckCode string

const (
	AckAccept AckCode = "AA"
	AckError  AckCode = "AE"
	AckReject AckCode = "AR"
)

func (c AckCode) IsPositive() bool { return c == AckAccept }

// BuildAck produces the ACK message answering the given header, with sender
// and receiver swapped as the receiving system replies.
func BuildAck(h *Header, code AckCode, now time.Time) string {
	sendingApp := "UNKNOWN"
	sendingFac := "UNKNOWN"
	receivingApp := "UNKNOWN"
	receivingFac := "UNKNOWN"
	controlID := "UNKNOWN"

	if h != nil {
		if h.ReceivingApplication != "" {
			sendingApp = h.ReceivingApplication
		}
		if h.ReceivingFacility != "" {
			sendingFac = h.ReceivingFacility
		}
		if h.SendingApplication != "" {
			receivingApp = h.SendingApplication
		}
		if h.SendingFacility != "" {
			receivingFac = h.SendingFacility
		}
		if h.ControlID != "" {
			controlID = h.ControlID
		}
	}

	msh := strings.Join([]string{
		"MSH", "^~\\&",
		sendingApp, sendingFac,
		receivingApp, receivingFac,
		now.UTC().Format(timestampLayout), "",
		"ACK", controlID, "P", "2.5",
	}, fieldSeparator)
	msa := strings.Join([]string{"MSA", string(code), controlID}, fieldSeparator)

	return msh + segmentSeparator + msa
}

// ParseAckCode extracts the MSA-1 acknowledgment code from an ACK message.
func ParseAckCode(raw string) (AckCode, error) {
	normalized := strings.ReplaceAll(raw, "\r\n", segmentSeparator)
	normalized = strings.ReplaceAll(normalized, "\n", segmentSeparator)

	for _, segment := range strings.Split(normalized, segmentSeparator) {
		if !strings.HasPrefix(segment, "MSA"+fieldSeparator) {
			continue
		}
		fields := strings.Split(segment, fieldSeparator)
		if len(fields) < 2 {
			return "", fmt.Errorf("MSA segment has no acknowledgment code")
		}
		return AckCode(strings.TrimSpace(fields[1])), nil
	}

	return "", fmt.Errorf("message has no MSA segment")
}
