package telegram

import (
	"AccountActivation/internal/core/ports"
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var _ ports.BotClientPort = (*tgClient)(nil) // Ensure compliance

// sender is the subset of *tgbotapi.BotAPI the client needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// tgClient implements the BotClientPort.
type tgClient struct {
	api sender
	log zerolog.Logger
}

// NewClient creates a new Telegram client adapter.
func NewClient(api *tgbotapi.BotAPI, baseLogger *zerolog.Logger) ports.BotClientPort {
	return newClient(api, baseLogger)
}

func newClient(api sender, baseLogger *zerolog.Logger) *tgClient {
	log := baseLogger.With().Str("component", "tg_client").Logger()
	return &tgClient{api: api, log: log}
}

// SendMessage translates our params into a tgbotapi message. The bot API
// has no context support, so the call is abandoned when ctx is done.
func (c *tgClient) SendMessage(ctx context.Context, params ports.SendMessageParams) (int, error) {
	msg := tgbotapi.NewMessage(params.ChatID, params.Text)
	msg.ParseMode = params.ParseMode
	msg.DisableNotification = params.Silent

	type sendResult struct {
		messageID int
		err       error
	}
	done := make(chan sendResult, 1)
	go func() {
		sent, err := c.api.Send(msg)
		done <- sendResult{messageID: sent.MessageID, err: err}
	}()

	select {
	case <-ctx.Done():
		c.log.Error().Err(ctx.Err()).Int64("chat_id", params.ChatID).Msg("Gave up waiting for Telegram")
		return 0, ctx.Err()
	case res := <-done:
		if res.err != nil {
			c.log.Error().Err(res.err).Int64("chat_id", params.ChatID).Msg("Failed to send message")
			return 0, res.err
		}
		return res.messageID, nil
	}
}
