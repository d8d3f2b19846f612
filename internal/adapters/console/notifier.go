// Package console provides a notifier that only logs activation notices.
// It is the default when no notification transport is configured.
package console

import (
	"AccountActivation/internal/core/ports"
	"context"

	"github.com/rs/zerolog"
)

var _ ports.ActivationNotifier = (*Notifier)(nil) // Ensure compliance

// Notifier writes activation notices to the log.
type Notifier struct {
	log zerolog.Logger
}

// NewNotifier creates a log-only notifier.
func NewNotifier(baseLogger *zerolog.Logger) *Notifier {
	return &Notifier{log: baseLogger.With().Str("component", "console_notifier").Logger()}
}

func (n *Notifier) SendFullActivation(ctx context.Context, notice ports.ActivationNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Info().
		Str("account_id", notice.AccountID.String()).
		Str("account_number", notice.AccountNumber).
		Str("owner_id", notice.Owner.ID.String()).
		Str("owner_email", notice.Owner.Email).
		Time("activated_at", notice.ActivatedAt).
		Msg("Account fully activated (notification logged only)")
	return nil
}
