package postgres

import (
	"time"
)

// MaxMessageLength is the largest message body accepted, in characters.
const MaxMessageLength = 1000

/*
 * 'Message' is one directed message between two players. Rows are never
 * edited or deleted; a conversation is replayed by reading both
 * directions ordered by send time.
 */
type Message struct {
	ID               uint      `gorm:"primaryKey"`
	SenderUsername   string    `gorm:"size:50;not null;index:idx_messages_sender"`
	ReceiverUsername string    `gorm:"size:50;not null;index:idx_messages_receiver"`
	Body             string    `gorm:"size:1000;not null"`
	SentAt           time.Time `gorm:"autoCreateTime"`

	// Relationships
	Sender   Player `gorm:"foreignKey:SenderUsername;constraint:OnDelete:RESTRICT;"`
	Receiver Player `gorm:"foreignKey:ReceiverUsername;constraint:OnDelete:RESTRICT;"`
}
