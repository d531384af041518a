package service

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/restlets/hl7-routing-log/internal/domain"
	"github.com/restlets/hl7-routing-log/internal/hl7"
	"github.com/restlets/hl7-routing-log/internal/observability"
	"github.com/restlets/hl7-routing-log/internal/ratelimit"
	"go.uber.org/zap"
)

// Appender is the slice of RoutingLogService the ingest path needs.
type Appender interface {
	Append(ctx context.Context, entry *domain.RoutingLogEntry, source string) (*domain.RoutingLogEntry, error)
}

// IngestService turns received MLLP messages into routing log entries and
// decides the ACK to answer with. The store itself never transitions rows;
// every received message becomes a new terminal entry.
type IngestService struct {
	appender  Appender
	limiter   ratelimit.RateLimiter
	metrics   *observability.Metrics
	logger    *zap.Logger
	channelID string
	destHost  *string
	destPort  *int
	errorRate float64
	randFloat func() float64
	now       func() time.Time
}

func NewIngestService(
	appender Appender,
	limiter ratelimit.RateLimiter,
	metrics *observability.Metrics,
	logger *zap.Logger,
	channelID string,
	listenAddr string,
	errorRate float64,
) (*IngestService, error) {
	if appender == nil {
		return nil, fmt.Errorf("appender is required")
	}
	if channelID == "" {
		return nil, fmt.Errorf("channel id is required")
	}
	if errorRate < 0 || errorRate > 1 {
		return nil, fmt.Errorf("error rate must be within [0, 1], got %v", errorRate)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &IngestService{
		appender:  appender,
		limiter:   limiter,
		metrics:   metrics,
		logger:    logger,
		channelID: channelID,
		errorRate: errorRate,
		randFloat: rand.Float64,
		now:       time.Now,
	}

	if host, portStr, err := net.SplitHostPort(listenAddr); err == nil {
		s.destHost = &host
		if port, convErr := strconv.Atoi(portStr); convErr == nil && port > 0 {
			s.destPort = &port
		}
	}

	return s, nil
}

// Handle implements mllp.Handler.
func (s *IngestService) Handle(ctx context.Context, message string, remote net.Addr) string {
	if ctx == nil {
		ctx = context.Background()
	}

	correlationID := uuid.NewString()
	ctx = observability.WithCorrelationID(ctx, correlationID)
	logger := observability.WithContextLogger(s.logger, ctx)
	if remote != nil {
		logger = logger.With(zap.String("remote", remote.String()))
	}

	header, parseErr := hl7.ParseHeader(message)

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, s.channelID); err != nil {
			logger.Warn("ingest rate limit wait failed", zap.Error(err))
			return s.ack(header, hl7.AckError)
		}
	}

	received := s.now().UTC()
	entry := s.buildEntry(header, received)

	code := hl7.AckAccept
	if parseErr != nil {
		code = hl7.AckError
		errMsg := fmt.Sprintf("invalid HL7 message: %v", parseErr)
		entry.Status = domain.StatusFailed
		entry.ErrorMessage = &errMsg
		logger.Warn("received unparseable HL7 message", zap.Error(parseErr))
	} else if s.errorRate > 0 && s.randFloat() < s.errorRate {
		code = hl7.AckError
		errMsg := "simulated delivery failure"
		entry.Status = domain.StatusFailed
		entry.ErrorMessage = &errMsg
	}

	if _, err := s.appender.Append(ctx, entry, observability.SourceMLLP); err != nil {
		logger.Error("failed to record routing log entry",
			zap.String("messageId", entry.MessageID),
			zap.Error(err),
		)
		return s.ack(header, hl7.AckError)
	}

	logger.Info("routing log entry recorded",
		zap.String("messageId", entry.MessageID),
		zap.String("status", entry.Status.String()),
		zap.String("ack", string(code)),
	)

	return s.ack(header, code)
}

func (s *IngestService) buildEntry(header *hl7.Header, received time.Time) *domain.RoutingLogEntry {
	channel := s.channelID
	entry := &domain.RoutingLogEntry{
		MessageID:       "UNKNOWN",
		ChannelID:       &channel,
		DestinationHost: s.destHost,
		DestinationPort: s.destPort,
		Status:          domain.StatusSuccess,
		SentTime:        &received,
		ReceivedTime:    &received,
	}

	if header == nil {
		return entry
	}

	entry.MessageID = header.ControlID
	// MSH-7 is the sender's clock; ignore it when it claims a dispatch
	// after our receipt so the entry stays internally consistent.
	if header.Timestamp != nil && !header.Timestamp.After(received) {
		entry.SentTime = header.Timestamp
	}

	if header.MessageType != "" {
		msgType := header.MessageType
		entry.MessageType = &msgType
	}
	if header.SendingApplication != "" {
		v := header.SendingApplication
		entry.SendingApplication = &v
	}
	if header.SendingFacility != "" {
		v := header.SendingFacility
		entry.SendingFacility = &v
	}
	if header.ReceivingApplication != "" {
		v := header.ReceivingApplication
		entry.ReceivingApplication = &v
	}
	if header.ReceivingFacility != "" {
		v := header.ReceivingFacility
		entry.ReceivingFacility = &v
	}

	return entry
}

func (s *IngestService) ack(header *hl7.Header, code hl7.AckCode) string {
	s.metrics.IncMLLPMessage(string(code))
	return hl7.BuildAck(header, code, s.now().UTC())
}
