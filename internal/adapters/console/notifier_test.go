package console

import (
	"AccountActivation/internal/core/ports"
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_LogsNotice(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	n := NewNotifier(&logger)

	id := uuid.New()
	require.NoError(t, n.SendFullActivation(context.Background(), ports.ActivationNotice{AccountID: id}))

	assert.Contains(t, buf.String(), id.String())
	assert.Contains(t, buf.String(), `"component":"console_notifier"`)
}

func TestNotifier_CancelledContext(t *testing.T) {
	nopLogger := zerolog.Nop()
	n := NewNotifier(&nopLogger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.SendFullActivation(ctx, ports.ActivationNotice{}), context.Canceled)
}
