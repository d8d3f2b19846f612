package telegram

import (
	"AccountActivation/internal/core/domain"
	"AccountActivation/internal/core/ports"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

// MockBotClient is a mock for the BotClientPort
type MockBotClient struct {
	mock.Mock
}

func (m *MockBotClient) SendMessage(ctx context.Context, params ports.SendMessageParams) (int, error) {
	args := m.Called(ctx, params)
	return args.Int(0), args.Error(1)
}

func newNotice(telegramID *int64) ports.ActivationNotice {
	return ports.ActivationNotice{
		AccountID:     uuid.New(),
		AccountNumber: "ACC-0042",
		Owner: domain.AccountOwner{
			ID:         uuid.New(),
			FirstName:  "Ada",
			LastName:   "Lovelace",
			TelegramID: telegramID,
		},
		ActivatedAt: time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC),
		VerifiedBy:  uuid.New(),
	}
}

// --- Tests ---

func TestActivationNotifier_SendsToOwnerChat(t *testing.T) {
	nopLogger := zerolog.Nop()
	client := new(MockBotClient)
	notifier := NewActivationNotifier(client, &nopLogger)

	chatID := int64(777)
	notice := newNotice(&chatID)

	client.On("SendMessage", mock.Anything, mock.MatchedBy(func(p ports.SendMessageParams) bool {
		return p.ChatID == chatID &&
			p.ParseMode == "MarkdownV2" &&
			!p.Silent &&
			strings.Contains(p.Text, "ACC\\-0042") &&
			strings.Contains(p.Text, "Mon, 04 May 2026 12:30:00 UTC") &&
			strings.Contains(p.Text, "Hello Ada Lovelace,")
	})).Return(10, nil).Once()

	err := notifier.SendFullActivation(context.Background(), notice)
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestActivationNotifier_Silent(t *testing.T) {
	nopLogger := zerolog.Nop()
	client := new(MockBotClient)
	notifier := NewActivationNotifier(client, &nopLogger, WithSilent(true))

	chatID := int64(778)
	client.On("SendMessage", mock.Anything, mock.MatchedBy(func(p ports.SendMessageParams) bool {
		return p.ChatID == chatID && p.Silent
	})).Return(11, nil).Once()

	err := notifier.SendFullActivation(context.Background(), newNotice(&chatID))
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestActivationNotifier_NoTelegramChat(t *testing.T) {
	nopLogger := zerolog.Nop()
	client := new(MockBotClient)
	notifier := NewActivationNotifier(client, &nopLogger)

	err := notifier.SendFullActivation(context.Background(), newNotice(nil))

	assert.True(t, domain.IsKind(err, domain.KindDispatch))
	client.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestActivationNotifier_SendFailure(t *testing.T) {
	nopLogger := zerolog.Nop()
	client := new(MockBotClient)
	notifier := NewActivationNotifier(client, &nopLogger)

	chatID := int64(1)
	sendErr := errors.New("Forbidden: bot was blocked by the user")
	client.On("SendMessage", mock.Anything, mock.Anything).Return(0, sendErr).Once()

	err := notifier.SendFullActivation(context.Background(), newNotice(&chatID))

	assert.True(t, domain.IsKind(err, domain.KindDispatch))
	assert.ErrorIs(t, err, sendErr)
}
