package hl7

import (
	"strings"
	"testing"
	"time"
)

const sampleADT = "MSH|^~\\&|EPIC|MAIN_HOSPITAL|LAB_SYSTEM|LAB_FACILITY|20260210093000||ADT^A01|MSG001|P|2.5\r" +
	"PID|1||12345^^^MRN||DOE^JOHN||19800101|M\r" +
	"PV1|1|I|ICU^101^A"

func TestParseHeader(t *testing.T) {
	t.Parallel()

	h, err := ParseHeader(sampleADT)
	if err != nil {
		t.Fatalf("ParseHeader() unexpected error = %v", err)
	}

	if h.ControlID != "MSG001" {
		t.Errorf("ControlID = %s, want MSG001", h.ControlID)
	}
	if h.MessageType != "ADT^A01" {
		t.Errorf("MessageType = %s, want ADT^A01", h.MessageType)
	}
	if h.SendingApplication != "EPIC" {
		t.Errorf("SendingApplication = %s, want EPIC", h.SendingApplication)
	}
	if h.SendingFacility != "MAIN_HOSPITAL" {
		t.Errorf("SendingFacility = %s, want MAIN_HOSPITAL", h.SendingFacility)
	}
	if h.ReceivingApplication != "LAB_SYSTEM" {
		t.Errorf("ReceivingApplication = %s, want LAB_SYSTEM", h.ReceivingApplication)
	}
	if h.ReceivingFacility != "LAB_FACILITY" {
		t.Errorf("ReceivingFacility = %s, want LAB_FACILITY", h.ReceivingFacility)
	}

	want := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	if h.Timestamp == nil || !h.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", h.Timestamp, want)
	}
}

func TestParseHeaderNewlineSeparated(t *testing.T) {
	t.Parallel()

	raw := strings.ReplaceAll(sampleADT, "\r", "\n")
	h, err := ParseHeader(raw)
	if err != nil {
		t.Fatalf("ParseHeader() unexpected error = %v", err)
	}
	if h.ControlID != "MSG001" {
		t.Errorf("ControlID = %s, want MSG001", h.ControlID)
	}
}

func TestParseHeaderErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "no MSH segment", raw: "PID|1||12345"},
		{name: "empty message", raw: ""},
		{name: "too few fields", raw: "MSH|^~\\&|EPIC"},
		{name: "missing control id", raw: "MSH|^~\\&|EPIC|FAC|LAB|FAC|20260210093000||ADT^A01||P|2.5"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseHeader(tt.raw); err == nil {
				t.Fatal("ParseHeader() expected error, got nil")
			}
		})
	}
}

func TestParseHeaderUnparseableTimestamp(t *testing.T) {
	t.Parallel()

	raw := "MSH|^~\\&|EPIC|FAC|LAB|FAC|not-a-date||ORU^R01|MSG077|P|2.5"
	h, err := ParseHeader(raw)
	if err != nil {
		t.Fatalf("ParseHeader() unexpected error = %v", err)
	}
	if h.Timestamp != nil {
		t.Fatalf("Timestamp = %v, want nil for unparseable MSH-7", h.Timestamp)
	}
}

func TestBuildAckAndParseAckCode(t *testing.T) {
	t.Parallel()

	h, err := ParseHeader(sampleADT)
	if err != nil {
		t.Fatalf("ParseHeader() unexpected error = %v", err)
	}

	now := time.Date(2026, 2, 10, 9, 30, 5, 0, time.UTC)
	ack := BuildAck(h, AckAccept, now)

	if !strings.HasPrefix(ack, "MSH|^~\\&|LAB_SYSTEM|LAB_FACILITY|EPIC|MAIN_HOSPITAL|20260210093005") {
		t.Fatalf("ack header has wrong sender/receiver swap: %s", ack)
	}
	if !strings.Contains(ack, "\rMSA|AA|MSG001") {
		t.Fatalf("ack missing MSA segment: %s", ack)
	}

	code, err := ParseAckCode(ack)
	if err != nil {
		t.Fatalf("ParseAckCode() unexpected error = %v", err)
	}
	if code != AckAccept {
		t.Errorf("ParseAckCode() = %s, want AA", code)
	}
	if !code.IsPositive() {
		t.Error("AckAccept should be positive")
	}

	negative := BuildAck(h, AckError, now)
	code, err = ParseAckCode(negative)
	if err != nil {
		t.Fatalf("ParseAckCode() unexpected error = %v", err)
	}
	if code.IsPositive() {
		t.Error("AckError should not be positive")
	}
}

func TestBuildAckNilHeader(t *testing.T) {
	t.Parallel()

	ack := BuildAck(nil, AckError, time.Date(2026, 2, 10, 9, 30, 5, 0, time.UTC))
	if !strings.Contains(ack, "MSA|AE|UNKNOWN") {
		t.Fatalf("ack for nil header should use UNKNOWN control id: %s", ack)
	}
}

func TestParseAckCodeErrors(t *testing.T) {
	t.Parallel()

	if _, err := ParseAckCode("MSH|^~\\&|A|B|C|D|20260210093000||ACK|MSG001|P|2.5"); err == nil {
		t.Fatal("ParseAckCode() expected error for missing MSA segment")
	}
}
