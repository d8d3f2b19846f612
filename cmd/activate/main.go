package main

import (
	"AccountActivation/internal/adapters/console"
	"AccountActivation/internal/adapters/kafka"
	"AccountActivation/internal/adapters/memory"
	"AccountActivation/internal/adapters/postgres"
	"AccountActivation/internal/adapters/security"
	"AccountActivation/internal/adapters/telegram"
	"AccountActivation/internal/core/domain"
	"AccountActivation/internal/core/ports"
	"AccountActivation/internal/core/services/activation"
	"AccountActivation/internal/shared/config"
	"AccountActivation/internal/shared/logger"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// payload flag name -> payload key
var fieldFlags = map[string]domain.Field{
	"kyc-submitted":     domain.FieldKYCSubmitted,
	"kyc-verified":      domain.FieldKYCVerified,
	"verification-date": domain.FieldVerificationDate,
	"notes":             domain.FieldVerificationNotes,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	fs := pflag.NewFlagSet("activate", pflag.ContinueOnError)
	accountFlag := fs.String("account", "", "bank account id (uuid)")
	reviewerFlag := fs.String("reviewer", "", "reviewing staff member id (uuid)")
	payloadFlag := fs.String("payload", "", "verification payload as a JSON object")
	fs.String("kyc-submitted", "", "candidate kyc_submitted value")
	fs.String("kyc-verified", "", "candidate kyc_verified value")
	fs.String("verification-date", "", "candidate verification_date (ISO 8601)")
	fs.String("notes", "", "candidate verification_notes")
	fs.String("notify.channel", config.ChannelLog, "notification channel: log, telegram or kafka")
	fs.Bool("telegram.silent", false, "send telegram notifications without sound")
	fs.Duration("notify.timeout", activation.DefaultNotifyTimeout, "notification dispatch timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// 1. Load Configuration
	cfg, err := config.LoadWithFlags(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		return 1
	}

	// 2. Initialize Logger
	baseLogger := logger.New(cfg.IsDev())
	baseLogger.Info().
		Str("app_env", cfg.AppEnv).
		Str("notify_channel", cfg.Notify.Channel).
		Bool("database", cfg.DatabaseURL != "").
		Msg("Configuration loaded")

	accountID, err := uuid.Parse(*accountFlag)
	if err != nil {
		baseLogger.Error().Err(err).Msg("--account must be a valid uuid")
		return 2
	}
	reviewerID, err := uuid.Parse(*reviewerFlag)
	if err != nil {
		baseLogger.Error().Err(err).Msg("--reviewer must be a valid uuid")
		return 2
	}

	raw, err := buildPayload(fs, *payloadFlag)
	if err != nil {
		return writeError(stdout, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Initialize the account store
	repo, closeRepo, err := newRepository(ctx, cfg, accountID, &baseLogger)
	if err != nil {
		baseLogger.Error().Err(err).Msg("Failed to initialize account store")
		return 1
	}
	defer closeRepo()

	// 4. Initialize the notifier
	notifier, closeNotifier, err := newNotifier(cfg, &baseLogger)
	if err != nil {
		baseLogger.Error().Err(err).Msg("Failed to initialize notifier")
		return 1
	}
	defer closeNotifier()

	// 5. Run the workflow
	workflow := activation.NewWorkflow(repo, notifier, &baseLogger,
		activation.WithNotifyTimeout(cfg.Notify.Timeout),
	)
	result, err := workflow.Activate(ctx, accountID, raw, reviewerID)
	if err != nil {
		return writeError(stdout, err)
	}
	if result.NotificationErr != nil {
		baseLogger.Warn().Err(result.NotificationErr).Msg("Account activated but the owner was not notified")
	}

	if err := writeJSON(stdout, result); err != nil {
		baseLogger.Error().Err(err).Msg("Failed to write result")
		return 1
	}
	return 0
}

// buildPayload merges --payload with the individual field flags. Field
// flags win over keys in --payload.
func buildPayload(fs *pflag.FlagSet, payload string) (map[string]interface{}, error) {
	raw := map[string]interface{}{}
	if payload != "" {
		decoded, err := activation.DecodePayload([]byte(payload))
		if err != nil {
			return nil, err
		}
		raw = decoded
	}

	for name, field := range fieldFlags {
		if !fs.Changed(name) {
			continue
		}
		value, err := fs.GetString(name)
		if err != nil {
			return nil, err
		}
		raw[string(field)] = value
	}
	return raw, nil
}

func newRepository(
	ctx context.Context,
	cfg *config.Config,
	accountID uuid.UUID,
	baseLogger *zerolog.Logger,
) (ports.BankAccountRepository, func(), error) {
	if cfg.DatabaseURL == "" {
		baseLogger.Warn().Msg("DATABASE_URL not set, using an in-memory store with a seeded pending account")
		repo := memory.NewBankAccountRepository(baseLogger)
		if err := repo.Create(ctx, seedAccount(accountID)); err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}

	secSvc, err := security.NewAESServiceFromHex(cfg.EncryptionKey, baseLogger)
	if err != nil {
		return nil, nil, err
	}
	db, err := postgres.NewDB(ctx, cfg.DatabaseURL, baseLogger)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewBankAccountRepository(db, secSvc, baseLogger), db.Close, nil
}

// seedAccount is the freshly provisioned account used by the in-memory store.
func seedAccount(id uuid.UUID) *domain.BankAccount {
	return &domain.BankAccount{
		ID:            id,
		AccountNumber: "DEMO-" + id.String()[:8],
		Owner: domain.AccountOwner{
			ID:        uuid.New(),
			FirstName: "Demo",
			LastName:  "Owner",
			Email:     "demo.owner@example.com",
		},
		Currency:      "USD",
		Balance:       decimal.Zero,
		AccountStatus: domain.AccountStatusPending,
	}
}

func newNotifier(cfg *config.Config, baseLogger *zerolog.Logger) (ports.ActivationNotifier, func(), error) {
	switch cfg.Notify.Channel {
	case config.ChannelTelegram:
		api, err := tgbotapi.NewBotAPI(cfg.Notify.Telegram.Token)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create telegram bot: %w", err)
		}
		baseLogger.Info().Str("bot_username", api.Self.UserName).Msg("Telegram bot authorized")
		client := telegram.NewClient(api, baseLogger)
		notifier := telegram.NewActivationNotifier(client, baseLogger,
			telegram.WithSilent(cfg.Notify.Telegram.Silent),
		)
		return notifier, func() {}, nil

	case config.ChannelKafka:
		writer := kafka.NewWriter(cfg.Notify.Kafka.Brokers, cfg.Notify.Kafka.Topic)
		publisher := kafka.NewActivationPublisher(writer, cfg.Notify.Kafka.Topic, baseLogger)
		return publisher, func() {
			if err := publisher.Close(); err != nil {
				baseLogger.Error().Err(err).Msg("Failed to close kafka writer")
			}
		}, nil

	default:
		return console.NewNotifier(baseLogger), func() {}, nil
	}
}

func writeError(w io.Writer, err error) int {
	status, body := activation.ErrorResponse(err)
	body["status"] = status
	if werr := writeJSON(w, body); werr != nil {
		fmt.Fprintf(os.Stderr, "failed to write error: %v\n", werr)
	}
	return 1
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
