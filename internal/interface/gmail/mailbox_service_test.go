package gmail

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"dispatch-console/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
)

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "subject:BOOKING has:attachment newer_than:2d", BuildQuery("BOOKING", 48*time.Hour))
	assert.Equal(t, "subject:BOOKING has:attachment newer_than:1d", BuildQuery("BOOKING", time.Hour))
}

func TestConvertMessage(t *testing.T) {
	sheet := []byte("PK\x03\x04 workbook bytes")
	unpadded := []byte("xls?")

	msg := &gmail.Message{
		Id:           "m1",
		InternalDate: 1710460800000,
		Payload: &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Headers: []*gmail.MessagePartHeader{
				{Name: "FROM", Value: "ops@example.com"},
				{Name: "subject", Value: "Booking sheet"},
			},
			Parts: []*gmail.MessagePart{
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("hi"))}},
				{
					MimeType: "multipart/related",
					Parts: []*gmail.MessagePart{
						{
							Filename: "bookings.xlsx",
							MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
							Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString(sheet)},
						},
					},
				},
				{
					Filename: "old.xls",
					MimeType: "application/vnd.ms-excel",
					Body:     &gmail.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString(unpadded)},
				},
			},
		},
	}

	m, err := ConvertMessage(msg, nil)
	require.NoError(t, err)

	assert.Equal(t, "m1", m.MessageID)
	assert.Equal(t, "ops@example.com", m.From)
	assert.Equal(t, "Booking sheet", m.Subject)
	assert.Equal(t, entity.StatusQueued, m.ProcessStatus)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), m.ReceivedAt)

	require.Len(t, m.Attachments, 2)
	assert.Equal(t, "bookings.xlsx", m.Attachments[0].Filename)
	assert.Equal(t, sheet, m.Attachments[0].Data)
	assert.Equal(t, "old.xls", m.Attachments[1].Filename)
	assert.Equal(t, unpadded, m.Attachments[1].Data)
}

func TestConvertMessage_FetchesLargeAttachments(t *testing.T) {
	msg := &gmail.Message{
		Id: "m2",
		Payload: &gmail.MessagePart{
			Parts: []*gmail.MessagePart{
				{Filename: "big.xlsx", Body: &gmail.MessagePartBody{AttachmentId: "att-1", Size: 1 << 20}},
			},
		},
	}

	var asked []string
	m, err := ConvertMessage(msg, func(messageID, attachmentID string) (string, error) {
		asked = append(asked, messageID+"/"+attachmentID)
		return base64.URLEncoding.EncodeToString([]byte("large")), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"m2/att-1"}, asked)
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, []byte("large"), m.Attachments[0].Data)

	_, err = ConvertMessage(msg, nil)
	assert.Error(t, err)

	_, err = ConvertMessage(msg, func(string, string) (string, error) { return "", errors.New("quota") })
	assert.ErrorContains(t, err, "quota")
}

func TestConvertMessage_NoPayload(t *testing.T) {
	m, err := ConvertMessage(&gmail.Message{Id: "m3"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "m3", m.MessageID)
	assert.Empty(t, m.Attachments)
}
