package postgresql

import (
	"fmt"
	"time"

	"github.com/restlets/hl7-routing-log/internal/domain"
	"github.com/restlets/hl7-routing-log/internal/repository"
	"gorm.io/gorm"
)

// Seed inserts the sample routing log dataset used in development
// environments: twenty synthetic delivery attempts across three message
// types, including failed attempts and their retries. It is a no-op when
// the table already has rows.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&repository.RoutingLogModel{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count routing log rows: %w", err)
	}
	if count > 0 {
		return nil
	}

	rows := sampleEntries()
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to seed routing log: %w", err)
	}

	return nil
}

type sampleRow struct {
	messageID string
	channel   string
	host      string
	port      int
	status    domain.Status
	errMsg    string
	sentAgo   time.Duration
	ackDelay  time.Duration
	msgType   string
	sendApp   string
	recvApp   string
}

func sampleEntries() []repository.RoutingLogModel {
	base := time.Now().UTC().Add(-24 * time.Hour)

	rows := []sampleRow{
		{messageID: "MSG001", channel: "adt_inbound", host: "192.168.1.10", port: 8000, status: domain.StatusSuccess, sentAgo: 0, ackDelay: 2 * time.Second, msgType: "ADT^A01", sendApp: "EPIC", recvApp: "LAB_SYSTEM"},
		{messageID: "MSG002", channel: "adt_inbound", host: "192.168.1.10", port: 8000, status: domain.StatusSuccess, sentAgo: 5 * time.Minute, ackDelay: time.Second, msgType: "ADT^A04", sendApp: "EPIC", recvApp: "LAB_SYSTEM"},
		{messageID: "MSG003", channel: "adt_inbound", host: "192.168.1.10", port: 8000, status: domain.StatusFailed, errMsg: "connection refused", sentAgo: 10 * time.Minute, ackDelay: 3 * time.Second, msgType: "ADT^A08", sendApp: "EPIC", recvApp: "LAB_SYSTEM"},
		{messageID: "MSG003", channel: "adt_inbound", host: "192.168.1.10", port: 8000, status: domain.StatusSuccess, sentAgo: 15 * time.Minute, ackDelay: 2 * time.Second, msgType: "ADT^A08", sendApp: "EPIC", recvApp: "LAB_SYSTEM"},
		{messageID: "MSG004", channel: "oru_results", host: "192.168.1.20", port: 8001, status: domain.StatusSuccess, sentAgo: 20 * time.Minute, ackDelay: time.Second, msgType: "ORU^R01", sendApp: "LAB_SYSTEM", recvApp: "EPIC"},
		{messageID: "MSG005", channel: "oru_results", host: "192.168.1.20", port: 8001, status: domain.StatusSuccess, sentAgo: 25 * time.Minute, ackDelay: 4 * time.Second, msgType: "ORU^R01", sendApp: "LAB_SYSTEM", recvApp: "EPIC"},
		{messageID: "MSG006", channel: "oru_results", host: "192.168.1.20", port: 8001, status: domain.StatusFailed, errMsg: "ACK timeout after 5s", sentAgo: 30 * time.Minute, ackDelay: 5 * time.Second, msgType: "ORU^R01", sendApp: "LAB_SYSTEM", recvApp: "EPIC"},
		{messageID: "MSG006", channel: "oru_results", host: "192.168.1.20", port: 8001, status: domain.StatusSuccess, sentAgo: 36 * time.Minute, ackDelay: time.Second, msgType: "ORU^R01", sendApp: "LAB_SYSTEM", recvApp: "EPIC"},
		{messageID: "MSG007", channel: "orm_orders", host: "192.168.1.30", port: 8002, status: domain.StatusSuccess, sentAgo: 40 * time.Minute, ackDelay: time.Second, msgType: "ORM^O01", sendApp: "CPOE", recvApp: "PHARMACY"},
		{messageID: "MSG008", channel: "orm_orders", host: "192.168.1.30", port: 8002, status: domain.StatusSuccess, sentAgo: 45 * time.Minute, ackDelay: 2 * time.Second, msgType: "ORM^O01", sendApp: "CPOE", recvApp: "PHARMACY"},
		{messageID: "MSG009", channel: "orm_orders", host: "192.168.1.30", port: 8002, status: domain.StatusFailed, errMsg: "negative ACK: AE application error", sentAgo: 50 * time.Minute, ackDelay: 2 * time.Second, msgType: "ORM^O01", sendApp: "CPOE", recvApp: "PHARMACY"},
		{messageID: "MSG010", channel: "adt_inbound", host: "192.168.1.10", port: 8000, status: domain.StatusPending, sentAgo: 55 * time.Minute, msgType: "ADT^A01", sendApp: "EPIC", recvApp: "LAB_SYSTEM"},
		{messageID: "MSG011", channel: "adt_inbound", host: "192.168.1.10", port: 8000, status: domain.StatusSuccess, sentAgo: time.Hour, ackDelay: time.Second, msgType: "ADT^A03", sendApp: "EPIC", recvApp: "LAB_SYSTEM"},
		{messageID: "MSG012", channel: "oru_results", host: "192.168.1.20", port: 8001, status: domain.StatusSuccess, sentAgo: 65 * time.Minute, ackDelay: 3 * time.Second, msgType: "ORU^R01", sendApp: "LAB_SYSTEM", recvApp: "EPIC"},
		{messageID: "MSG013", channel: "orm_orders", host: "192.168.1.30", port: 8002, status: domain.StatusSuccess, sentAgo: 70 * time.Minute, ackDelay: time.Second, msgType: "ORM^O01", sendApp: "CPOE", recvApp: "PHARMACY"},
		{messageID: "MSG014", channel: "adt_inbound", host: "192.168.1.10", port: 8000, status: domain.StatusPending, sentAgo: 75 * time.Minute, msgType: "ADT^A08", sendApp: "EPIC", recvApp: "LAB_SYSTEM"},
		{messageID: "MSG015", channel: "oru_results", host: "192.168.1.20", port: 8001, status: domain.StatusFailed, errMsg: "connection reset by peer", sentAgo: 80 * time.Minute, ackDelay: time.Second, msgType: "ORU^R01", sendApp: "LAB_SYSTEM", recvApp: "EPIC"},
		{messageID: "MSG016", channel: "adt_inbound", host: "192.168.1.10", port: 8000, status: domain.StatusSuccess, sentAgo: 85 * time.Minute, ackDelay: 2 * time.Second, msgType: "ADT^A01", sendApp: "EPIC", recvApp: "LAB_SYSTEM"},
		{messageID: "MSG017", channel: "orm_orders", host: "192.168.1.30", port: 8002, status: domain.StatusSuccess, sentAgo: 90 * time.Minute, ackDelay: time.Second, msgType: "ORM^O01", sendApp: "CPOE", recvApp: "PHARMACY"},
		{messageID: "MSG018", channel: "oru_results", host: "192.168.1.20", port: 8001, status: domain.StatusSuccess, sentAgo: 95 * time.Minute, ackDelay: 2 * time.Second, msgType: "ORU^R01", sendApp: "LAB_SYSTEM", recvApp: "EPIC"},
	}

	models := make([]repository.RoutingLogModel, 0, len(rows))
	for _, row := range rows {
		sent := base.Add(row.sentAgo)

		model := repository.RoutingLogModel{
			MessageID:            row.messageID,
			ChannelID:            strPtr(row.channel),
			DestinationHost:      strPtr(row.host),
			DestinationPort:      intPtr(row.port),
			Status:               row.status,
			SentTime:             &sent,
			MessageType:          strPtr(row.msgType),
			SendingApplication:   strPtr(row.sendApp),
			SendingFacility:      strPtr("MAIN_HOSPITAL"),
			ReceivingApplication: strPtr(row.recvApp),
			ReceivingFacility:    strPtr("MAIN_HOSPITAL"),
		}

		if row.status != domain.StatusPending {
			received := sent.Add(row.ackDelay)
			model.ReceivedTime = &received
		}
		if row.status == domain.StatusFailed {
			model.ErrorMessage = strPtr(row.errMsg)
		}

		models = append(models, model)
	}

	return models
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
