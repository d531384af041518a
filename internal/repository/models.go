package repository

import (
	"time"

	"github.com/restlets/hl7-routing-log/internal/domain"
)

// RoutingLogModel is the persistence model for the hlp_routing_log table.
// Column names and types are fixed; external tooling queries this layout.
type RoutingLogModel struct {
	ID                   int64         `gorm:"primaryKey;autoIncrement"`
	MessageID            string        `gorm:"column:message_id;type:varchar(255);not null"`
	ChannelID            *string       `gorm:"column:channel_id;type:varchar(255)"`
	DestinationHost      *string       `gorm:"column:destination_host;type:varchar(255)"`
	DestinationPort      *int          `gorm:"column:destination_port;type:integer"`
	Status               domain.Status `gorm:"column:status;type:varchar(50)"`
	ErrorMessage         *string       `gorm:"column:error_message;type:text"`
	SentTime             *time.Time    `gorm:"column:sent_time;type:timestamp"`
	ReceivedTime         *time.Time    `gorm:"column:received_time;type:timestamp"`
	CreatedAt            time.Time     `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP"`
	MessageType          *string       `gorm:"column:message_type;type:varchar(50)"`
	SendingApplication   *string       `gorm:"column:sending_application;type:varchar(255)"`
	SendingFacility      *string       `gorm:"column:sending_facility;type:varchar(255)"`
	ReceivingApplication *string       `gorm:"column:receiving_application;type:varchar(255)"`
	ReceivingFacility    *string       `gorm:"column:receiving_facility;type:varchar(255)"`
}

func (RoutingLogModel) TableName() string {
	return "hlp_routing_log"
}

func entryModelFromDomain(e *domain.RoutingLogEntry) *RoutingLogModel {
	if e == nil {
		return nil
	}

	return &RoutingLogModel{
		ID:                   e.ID,
		MessageID:            e.MessageID,
		ChannelID:            e.ChannelID,
		DestinationHost:      e.DestinationHost,
		DestinationPort:      e.DestinationPort,
		Status:               e.Status,
		ErrorMessage:         e.ErrorMessage,
		SentTime:             e.SentTime,
		ReceivedTime:         e.ReceivedTime,
		CreatedAt:            e.CreatedAt,
		MessageType:          e.MessageType,
		SendingApplication:   e.SendingApplication,
		SendingFacility:      e.SendingFacility,
		ReceivingApplication: e.ReceivingApplication,
		ReceivingFacility:    e.ReceivingFacility,
	}
}

func entryModelToDomain(m *RoutingLogModel) *domain.RoutingLogEntry {
	if m == nil {
		return nil
	}

	return &domain.RoutingLogEntry{
		ID:                   m.ID,
		MessageID:            m.MessageID,
		ChannelID:            m.ChannelID,
		DestinationHost:      m.DestinationHost,
		DestinationPort:      m.DestinationPort,
		Status:               m.Status,
		ErrorMessage:         m.ErrorMessage,
		SentTime:             m.SentTime,
		ReceivedTime:         m.ReceivedTime,
		CreatedAt:            m.CreatedAt,
		MessageType:          m.MessageType,
		SendingApplication:   m.SendingApplication,
		SendingFacility:      m.SendingFacility,
		ReceivingApplication: m.ReceivingApplication,
		ReceivingFacility:    m.ReceivingFacility,
	}
}

func entryModelsToDomain(models []RoutingLogModel) []domain.RoutingLogEntry {
	entries := make([]domain.RoutingLogEntry, 0, len(models))
	for i := range models {
		entries = append(entries, *entryModelToDomain(&models[i]))
	}
	return entries
}
