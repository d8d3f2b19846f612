package messages

import (
	"AccountActivation/internal/core/ports"
	"strings"
)

const ParseModeMarkdownV2 = "MarkdownV2"

// markdownV2Special lists the characters Telegram requires escaped in MarkdownV2.
const markdownV2Special = "_*[]()~`>#+-=|{}.!\\"

// Builder helps construct SendMessageParams.
type Builder struct {
	params ports.SendMessageParams
	lines  []string
}

// NewBuilder creates a new message builder.
func NewBuilder(chatID int64) *Builder {
	return &Builder{
		params: ports.SendMessageParams{
			ChatID:    chatID,
			ParseMode: ParseModeMarkdownV2, // Default to Markdown
		},
	}
}

// Line appends a raw line.
func (b *Builder) Line(text string) *Builder {
	b.lines = append(b.lines, text)
	return b
}

// Field appends a "*label:* value" line, escaping the value.
func (b *Builder) Field(label, value string) *Builder {
	return b.Line("*" + Escape(label) + ":* " + Escape(value))
}

// Silent delivers the message without a notification sound.
func (b *Builder) Silent() *Builder {
	b.params.Silent = true
	return b
}

// Build returns the final SendMessageParams struct.
func (b *Builder) Build() ports.SendMessageParams {
	p := b.params
	p.Text = strings.Join(b.lines, "\n")
	return p
}

// Escape makes s safe to embed in a MarkdownV2 message.
func Escape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownV2Special, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
