package ports

import "context"

// SendMessageParams holds the options for sending a chat message.
type SendMessageParams struct {
	ChatID    int64
	Text      string
	ParseMode string // e.g., "MarkdownV2" or "HTML"
	Silent    bool   // Deliver without a notification sound
}

// BotClientPort is the outbound chat client used for owner notifications.
type BotClientPort interface {
	// SendMessage returns the id of the sent message.
	SendMessage(ctx context.Context, params SendMessageParams) (int, error)
}
