package entity

import (
	"time"
)

// Mailbox message process status
const (
	StatusQueued     = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusProcessed  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusSkipped    = "SKIPPED"
)

// MailboxMessage is a Gmail message that may carry booking workbooks
type MailboxMessage struct {
	MessageID     string       `bson:"messageId"`
	From          string       `bson:"from"`
	Subject       string       `bson:"subject"`
	ReceivedAt    time.Time    `bson:"receivedAt"`
	SavedAt       time.Time    `bson:"savedAt"`
	Attachments   []Attachment `bson:"-"`
	ProcessStatus string       `bson:"processStatus"`
	ProcessedAt   time.Time    `bson:"processedAt"`
	HandlerType   string       `bson:"handlerType"`
	ErrorDetail   string       `bson:"errorDetail"`
	Imported      int          `bson:"imported"`
	TargetDate    string       `bson:"targetDate"`
}

// Attachment is a file attached to a mailbox message
type Attachment struct {
	Filename    string `bson:"filename"`
	ContentType string `bson:"contentType"`
	Data        []byte `bson:"-"`
}
