package config

import "time"

const (
	// Shapes API request timeout; there is no retry, one attempt per send
	RequestTimeout = 90 * time.Second

	// Shape profile page fetch timeout
	ProfileFetchTimeout = 15 * time.Second

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Attachment limits
	MaxAttachmentBytes = 10 << 20

	// Shapes per user
	MaxShapesPerUser = 50
)
