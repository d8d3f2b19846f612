package telegram

import (
	"AccountActivation/internal/bot/messages"
	"AccountActivation/internal/core/domain"
	"AccountActivation/internal/core/ports"
	"context"
	"time"

	"github.com/rs/zerolog"
)

var _ ports.ActivationNotifier = (*ActivationNotifier)(nil) // Ensure compliance

// ActivationNotifier tells the account owner, through the customer bot,
// that their account is fully active.
type ActivationNotifier struct {
	client ports.BotClientPort
	silent bool
	log    zerolog.Logger
}

// NotifierOption customizes an ActivationNotifier.
type NotifierOption func(*ActivationNotifier)

// WithSilent delivers activation messages without a notification sound.
func WithSilent(silent bool) NotifierOption {
	return func(n *ActivationNotifier) {
		n.silent = silent
	}
}

// NewActivationNotifier creates the Telegram notifier.
func NewActivationNotifier(client ports.BotClientPort, baseLogger *zerolog.Logger, opts ...NotifierOption) *ActivationNotifier {
	n := &ActivationNotifier{
		client: client,
		log:    baseLogger.With().Str("component", "tg_activation_notifier").Logger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SendFullActivation sends the activation message to the owner's chat.
func (n *ActivationNotifier) SendFullActivation(ctx context.Context, notice ports.ActivationNotice) error {
	log := n.log.With().
		Str("account_id", notice.AccountID.String()).
		Str("owner_id", notice.Owner.ID.String()).
		Logger()

	if notice.Owner.TelegramID == nil {
		log.Warn().Msg("Account owner has no Telegram chat, cannot notify")
		return domain.NewError(domain.KindDispatch, "account owner has no telegram chat")
	}

	msg := buildActivationMessage(*notice.Owner.TelegramID, notice, n.silent)

	msgID, err := n.client.SendMessage(ctx, msg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to send activation message")
		return domain.WrapError(domain.KindDispatch, "telegram send failed", err)
	}

	log.Info().Int("message_id", msgID).Msg("Activation message sent")
	return nil
}

func buildActivationMessage(chatID int64, notice ports.ActivationNotice, silent bool) ports.SendMessageParams {
	b := messages.NewBuilder(chatID)
	if silent {
		b.Silent()
	}
	if name := notice.Owner.FullName(); name != "" {
		b.Line("Hello " + messages.Escape(name) + ",")
	}
	return b.
		Line("🎉 Your bank account has been *fully activated*\\. You can now use all account features\\.").
		Field("Account", notice.AccountNumber).
		Field("Activated at", notice.ActivatedAt.UTC().Format(time.RFC1123)).
		Build()
}
