package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/internal/usecase"
	"dispatch-console/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// MailboxService polls the dispatch inbox for booking workbooks and hands
// each new message to the orchestrator as soon as it is saved
type MailboxService struct {
	gmailService *gmail.Service
	mailboxRepo  repository.MailboxRepository
	orchestrator *usecase.MailboxOrchestrator
	query        string
	logger       logger.Logger
	pollInterval time.Duration
}

// NewMailboxService creates a new mailbox service. lookback bounds how far
// back the inbox is searched on every poll.
func NewMailboxService(
	ctx context.Context,
	tokenSource oauth2.TokenSource,
	mailboxRepo repository.MailboxRepository,
	orchestrator *usecase.MailboxOrchestrator,
	logger logger.Logger,
	pollInterval time.Duration,
	lookback time.Duration,
) (*MailboxService, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &MailboxService{
		gmailService: service,
		mailboxRepo:  mailboxRepo,
		orchestrator: orchestrator,
		query:        BuildQuery(usecase.BookingSheet, lookback),
		logger:       logger,
		pollInterval: pollInterval,
	}, nil
}

// BuildQuery returns the Gmail search for messages with attachments whose
// subject mentions keyword, received within lookback
func BuildQuery(keyword string, lookback time.Duration) string {
	days := int(lookback.Hours() / 24)
	if days < 1 {
		days = 1
	}
	return fmt.Sprintf("subject:%s has:attachment newer_than:%dd", keyword, days)
}

// staleAfter is how long a message may sit unfinished before it is fetched again
const staleAfter = 10 * time.Minute

// StartPolling checks the inbox immediately and then on every tick
func (s *MailboxService) StartPolling(ctx context.Context) {
	if released, err := s.mailboxRepo.ReleaseStale(ctx, staleAfter); err != nil {
		s.logger.Error("Failed to release stale messages", "error", err)
	} else if released > 0 {
		s.logger.Info("Released stale mailbox messages", "count", released)
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	if err := s.FetchAndProcess(ctx); err != nil {
		s.logger.Error("Error polling mailbox", "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Mailbox polling stopped")
			return
		case <-ticker.C:
			if err := s.FetchAndProcess(ctx); err != nil {
				s.logger.Error("Error polling mailbox", "error", err)
			}
		}
	}
}

// FetchAndProcess imports every matching message not seen before
func (s *MailboxService) FetchAndProcess(ctx context.Context) error {
	resp, err := s.gmailService.Users.Messages.List("me").Q(s.query).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}
	if len(resp.Messages) == 0 {
		s.logger.Debug("No booking messages found", "query", s.query)
		return nil
	}

	ids := make([]string, len(resp.Messages))
	for i, msg := range resp.Messages {
		ids[i] = msg.Id
	}
	existing, err := s.mailboxRepo.FindByMessageIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to check known messages", "error", err)
		existing = make(map[string]*entity.MailboxMessage)
	}

	newCount := 0
	for _, msg := range resp.Messages {
		if _, ok := existing[msg.Id]; ok {
			continue
		}

		full, err := s.gmailService.Users.Messages.Get("me", msg.Id).Context(ctx).Do()
		if err != nil {
			s.logger.Error("Failed to get message", "messageID", msg.Id, "error", err)
			continue
		}
		message, err := ConvertMessage(full, func(messageID, attachmentID string) (string, error) {
			body, err := s.gmailService.Users.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
			if err != nil {
				return "", err
			}
			return body.Data, nil
		})
		if err != nil {
			s.logger.Error("Failed to convert message", "messageID", msg.Id, "error", err)
			continue
		}

		if err := s.mailboxRepo.Save(ctx, message); err != nil {
			s.logger.Error("Failed to save message", "messageID", msg.Id, "error", err)
			continue
		}
		newCount++

		if err := s.orchestrator.ProcessMessage(ctx, message); err != nil {
			s.logger.Error("Failed to process message", "messageID", msg.Id, "error", err)
		}
	}

	s.logger.Info("Mailbox poll completed",
		"matched", len(resp.Messages),
		"new", newCount)
	return nil
}

// AttachmentFetcher returns the base64url body of a large attachment
type AttachmentFetcher func(messageID, attachmentID string) (string, error)

// ConvertMessage maps a Gmail message to a mailbox message, collecting
// attachments from nested multipart parts. Attachments Gmail did not inline
// are pulled through fetch.
func ConvertMessage(msg *gmail.Message, fetch AttachmentFetcher) (*entity.MailboxMessage, error) {
	message := &entity.MailboxMessage{
		MessageID:     msg.Id,
		ReceivedAt:    time.UnixMilli(msg.InternalDate).UTC(),
		ProcessStatus: entity.StatusQueued,
	}
	if msg.Payload == nil {
		return message, nil
	}

	for _, header := range msg.Payload.Headers {
		switch strings.ToLower(header.Name) {
		case "from":
			message.From = header.Value
		case "subject":
			message.Subject = header.Value
		}
	}

	var walk func(part *gmail.MessagePart) error
	walk = func(part *gmail.MessagePart) error {
		if part.Filename != "" && part.Body != nil {
			encoded := part.Body.Data
			if encoded == "" && part.Body.AttachmentId != "" {
				if fetch == nil {
					return fmt.Errorf("attachment %s not inlined", part.Filename)
				}
				var err error
				if encoded, err = fetch(msg.Id, part.Body.AttachmentId); err != nil {
					return fmt.Errorf("failed to fetch attachment %s: %w", part.Filename, err)
				}
			}
			data, err := decodeBody(encoded)
			if err != nil {
				return fmt.Errorf("failed to decode attachment %s: %w", part.Filename, err)
			}
			message.Attachments = append(message.Attachments, entity.Attachment{
				Filename:    part.Filename,
				ContentType: part.MimeType,
				Data:        data,
			})
		}
		for _, child := range part.Parts {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(msg.Payload); err != nil {
		return nil, err
	}
	return message, nil
}

// Gmail uses URL-safe base64, sometimes without padding
func decodeBody(encoded string) ([]byte, error) {
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err == nil {
		return data, nil
	}
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
}
