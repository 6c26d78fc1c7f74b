package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/usecase"
	"dispatch-console/pkg/logger"
	"dispatch-console/pkg/utils"
)

// ErrNoWorkbook is returned for booking mails without a workbook attached
var ErrNoWorkbook = errors.New("no workbook attachment")

// BookingSheetHandler imports the booking workbooks mailed to the dispatch inbox
type BookingSheetHandler struct {
	importer   *usecase.Importer
	targetDate func() string
	logger     logger.Logger
}

// NewBookingSheetHandler creates a new booking sheet handler. targetDate
// picks the import date per message; nil means the importer's default.
func NewBookingSheetHandler(importer *usecase.Importer, targetDate func() string, logger logger.Logger) *BookingSheetHandler {
	return &BookingSheetHandler{
		importer:   importer,
		targetDate: targetDate,
		logger:     logger,
	}
}

// CanHandle determines if this handler can process the given email subject
func (h *BookingSheetHandler) CanHandle(subject string) bool {
	return strings.Contains(strings.ToUpper(subject), usecase.BookingSheet)
}

// Process imports every workbook attached to the message. Results of all
// attachments are merged; the first hard failure stops the message.
func (h *BookingSheetHandler) Process(ctx context.Context, message *entity.MailboxMessage) (*usecase.ImportResult, error) {
	date := ""
	if h.targetDate != nil {
		date = h.targetDate()
	}

	merged := &usecase.ImportResult{TargetDate: date}
	found := false
	for _, att := range message.Attachments {
		if !utils.IsWorkbookFile(att.Filename) {
			continue
		}
		found = true

		result, err := h.importer.Import(ctx, att.Filename, att.Data, date)
		if result != nil {
			merged.TargetDate = result.TargetDate
			merged.Skipped += result.Skipped
			merged.Schedules = append(merged.Schedules, result.Schedules...)
		}
		if errors.Is(err, usecase.ErrNoSchedules) {
			h.logger.Info("Attachment has no schedules for target date", "file", att.Filename, "messageID", message.MessageID)
			continue
		}
		if err != nil {
			return merged, fmt.Errorf("failed to import %s: %w", att.Filename, err)
		}
	}

	if !found {
		return merged, ErrNoWorkbook
	}
	if len(merged.Schedules) == 0 {
		return merged, usecase.ErrNoSchedules
	}
	return merged, nil
}
