package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/restlets/hl7-routing-log/internal/domain"
	"github.com/restlets/hl7-routing-log/internal/observability"
	"github.com/restlets/hl7-routing-log/internal/service"
)

type RoutingLogService interface {
	Append(ctx context.Context, entry *domain.RoutingLogEntry, source string) (*domain.RoutingLogEntry, error)
	GetByMessageID(ctx context.Context, messageID string) ([]domain.RoutingLogEntry, error)
	ListByStatus(ctx context.Context, status domain.Status, from, to time.Time) ([]domain.RoutingLogEntry, error)
	ListByType(ctx context.Context, messageType string, limit int) ([]domain.RoutingLogEntry, error)
	Summary(ctx context.Context) (*service.Summary, error)
}

type RoutingLogHandler struct {
	service RoutingLogService
}

func NewRoutingLogHandler(service RoutingLogService) (*RoutingLogHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("routing log service is required")
	}
	return &RoutingLogHandler{service: service}, nil
}

func RegisterRoutingLogRoutes(router fiber.Router, service RoutingLogService) error {
	h, err := NewRoutingLogHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/routing-log", h.AppendEntry)
	v1.Get("/routing-log", h.ListByStatus)
	v1.Get("/routing-log/summary", h.GetSummary)
	v1.Get("/routing-log/messages/:messageId", h.ListByMessage)
	v1.Get("/routing-log/types/:messageType", h.ListByType)

	return nil
}

type appendEntryRequest struct {
	MessageID            string     `json:"messageId"`
	ChannelID            *string    `json:"channelId"`
	DestinationHost      *string    `json:"destinationHost"`
	DestinationPort      *int       `json:"destinationPort"`
	Status               string     `json:"status"`
	ErrorMessage         *string    `json:"errorMessage"`
	SentTime             *time.Time `json:"sentTime"`
	ReceivedTime         *time.Time `json:"receivedTime"`
	MessageType          *string    `json:"messageType"`
	SendingApplication   *string    `json:"sendingApplication"`
	SendingFacility      *string    `json:"sendingFacility"`
	ReceivingApplication *string    `json:"receivingApplication"`
	ReceivingFacility    *string    `json:"receivingFacility"`
}

type entryResponse struct {
	ID                   int64      `json:"id"`
	MessageID            string     `json:"messageId"`
	ChannelID            *string    `json:"channelId,omitempty"`
	DestinationHost      *string    `json:"destinationHost,omitempty"`
	DestinationPort      *int       `json:"destinationPort,omitempty"`
	Status               string     `json:"status"`
	ErrorMessage         *string    `json:"errorMessage,omitempty"`
	SentTime             *time.Time `json:"sentTime,omitempty"`
	ReceivedTime         *time.Time `json:"receivedTime,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	MessageType          *string    `json:"messageType,omitempty"`
	SendingApplication   *string    `json:"sendingApplication,omitempty"`
	SendingFacility      *string    `json:"sendingFacility,omitempty"`
	ReceivingApplication *string    `json:"receivingApplication,omitempty"`
	ReceivingFacility    *string    `json:"receivingFacility,omitempty"`
}

type listEntriesResponse struct {
	Data []entryResponse `json:"data"`
}

type summaryResponse struct {
	Total       int64             `json:"total"`
	SuccessRate float64           `json:"successRate"`
	Counts      []statusCountItem `json:"counts"`
}

type statusCountItem struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (h *RoutingLogHandler) AppendEntry(c *fiber.Ctx) error {
	var req appendEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	status, err := domain.ParseStatusFromString(req.Status)
	if err != nil {
		return toHTTPError(err)
	}

	entry := domain.RoutingLogEntry{
		MessageID:            strings.TrimSpace(req.MessageID),
		ChannelID:            req.ChannelID,
		DestinationHost:      req.DestinationHost,
		DestinationPort:      req.DestinationPort,
		Status:               status,
		ErrorMessage:         req.ErrorMessage,
		SentTime:             req.SentTime,
		ReceivedTime:         req.ReceivedTime,
		MessageType:          req.MessageType,
		SendingApplication:   req.SendingApplication,
		SendingFacility:      req.SendingFacility,
		ReceivingApplication: req.ReceivingApplication,
		ReceivingFacility:    req.ReceivingFacility,
	}

	created, err := h.service.Append(c.Context(), &entry, observability.SourceHTTP)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toEntryResponse(created))
}

func (h *RoutingLogHandler) ListByMessage(c *fiber.Ctx) error {
	messageID := strings.TrimSpace(c.Params("messageId"))

	entries, err := h.service.GetByMessageID(c.Context(), messageID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(listEntriesResponse{Data: toEntryResponses(entries)})
}

func (h *RoutingLogHandler) ListByStatus(c *fiber.Ctx) error {
	status, err := domain.ParseStatusFromString(c.Query("status"))
	if err != nil {
		return toHTTPError(err)
	}

	from, err := parseRFC3339Query(c.Query("from"), "from")
	if err != nil {
		return toHTTPError(err)
	}
	to, err := parseRFC3339Query(c.Query("to"), "to")
	if err != nil {
		return toHTTPError(err)
	}
	if from == nil || to == nil {
		return toHTTPError(fmt.Errorf("%w: from and to are required", domain.ErrValidation))
	}

	entries, err := h.service.ListByStatus(c.Context(), status, *from, *to)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(listEntriesResponse{Data: toEntryResponses(entries)})
}

func (h *RoutingLogHandler) ListByType(c *fiber.Ctx) error {
	messageType := strings.TrimSpace(c.Params("messageType"))
	limit := c.QueryInt("limit", 0)

	entries, err := h.service.ListByType(c.Context(), messageType, limit)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(listEntriesResponse{Data: toEntryResponses(entries)})
}

func (h *RoutingLogHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	items := make([]statusCountItem, 0, len(summary.Counts))
	for _, count := range summary.Counts {
		items = append(items, statusCountItem{
			Status: count.Status.String(),
			Count:  count.Count,
		})
	}

	return c.Status(fiber.StatusOK).JSON(summaryResponse{
		Total:       summary.Total,
		SuccessRate: summary.SuccessRate,
		Counts:      items,
	})
}

func toEntryResponse(e *domain.RoutingLogEntry) entryResponse {
	if e == nil {
		return entryResponse{}
	}

	return entryResponse{
		ID:                   e.ID,
		MessageID:            e.MessageID,
		ChannelID:            e.ChannelID,
		DestinationHost:      e.DestinationHost,
		DestinationPort:      e.DestinationPort,
		Status:               e.Status.String(),
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

func toEntryResponses(entries []domain.RoutingLogEntry) []entryResponse {
	responses := make([]entryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, toEntryResponse(&entries[i]))
	}
	return responses
}

func parseRFC3339Query(value string, field string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC3339", domain.ErrValidation, field)
	}

	return &parsed, nil
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrStorage):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return err
	}
}
