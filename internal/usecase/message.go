package usecase

import (
	"fmt"
	"strings"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/pkg/utils"

	"github.com/google/uuid"
)

// BookingMessage renders the client-facing confirmation for a schedule
func BookingMessage(s entity.Schedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Good day %s!\n\n", orDefault(s.ClientName, "Sir/Ma'am"))
	fmt.Fprintf(&b, "Your booking with %s is confirmed.\n\n", orDefault(s.Company, DefaultCompany))
	fmt.Fprintf(&b, "Reference: %s\n", s.TransactionID)
	fmt.Fprintf(&b, "Date: %s\n", utils.DisplayDate(s.Date))
	if s.Time != "" {
		fmt.Fprintf(&b, "Time: %s\n", s.Time)
	}
	if s.FlightNumber != "" {
		fmt.Fprintf(&b, "Flight: %s\n", s.FlightNumber)
	}
	fmt.Fprintf(&b, "Pick-up: %s\n", orDefault(s.Pickup, "-"))
	fmt.Fprintf(&b, "Drop-off: %s\n", orDefault(s.DropOff, "-"))

	if s.Current.DriverName != "" {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Driver: %s", s.Current.DriverName)
		if s.Current.CellPhone != "" {
			fmt.Fprintf(&b, " (%s)", s.Current.CellPhone)
		}
		b.WriteString("\n")
	}
	if unit := utils.JoinName(s.UnitType, s.Color, s.PlateNumber); unit != "" {
		fmt.Fprintf(&b, "Vehicle: %s\n", unit)
	}

	b.WriteString("\nThank you!")
	return b.String()
}

// NewBookingNotification builds the outbox entry for a schedule, or nil
// when the booking carries no contact number
func NewBookingNotification(s entity.Schedule, now time.Time) *entity.OutboundMessage {
	phone := utils.ToE164(s.ContactNumber)
	if phone == "" {
		return nil
	}
	return &entity.OutboundMessage{
		ID:            uuid.NewString(),
		Type:          entity.BookingConfirmation,
		TransactionID: s.TransactionID,
		Phone:         phone,
		Text:          BookingMessage(s),
		CreatedAt:     now,
		Status:        entity.MessageQueued,
		Metadata: map[string]interface{}{
			"date": s.Date,
		},
	}
}

func orDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
