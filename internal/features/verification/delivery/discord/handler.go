package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"wallet-verify-backend/internal/common/logger"
	"wallet-verify-backend/internal/features/verification/service"
)

// CommandHandler wires the chat surface of the verification flow: the
// verify command issues a token and DMs the link.
type CommandHandler struct {
	service *service.Service
	chat    service.ChatGateway
	prefix  string
}

func NewCommandHandler(svc *service.Service, chat service.ChatGateway, prefix string) *CommandHandler {
	if prefix == "" {
		prefix = "!"
	}
	return &CommandHandler{service: svc, chat: chat, prefix: prefix}
}

// Register attaches the handlers to the session. Must be called before
// the session is opened.
func (h *CommandHandler) Register(session *discordgo.Session) {
	session.AddHandler(h.onReady)
	session.AddHandler(h.onMessageCreate)
}

func (h *CommandHandler) onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Info().
		Str("username", r.User.Username).
		Str("user_id", r.User.ID).
		Msg("Bot is ready")
}

func (h *CommandHandler) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if strings.TrimSpace(m.Content) != h.prefix+"verify" {
		return
	}

	logger.Debug().
		Str("user_id", m.Author.ID).
		Str("username", m.Author.Username).
		Msg("Verify command invoked")

	link, err := h.service.IssueToken(m.Author.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to issue verification token")
		h.reply(s, m.ChannelID, "An error occurred during verification.")
		return
	}

	if err := h.chat.SendDirectMessage(m.Author.ID, fmt.Sprintf("To verify your wallet, please visit: %s", link)); err != nil {
		logger.Error().Err(err).Str("user_id", m.Author.ID).Msg("Failed to DM verification link")
		h.reply(s, m.ChannelID, "An error occurred during verification.")
		return
	}

	h.reply(s, m.ChannelID, fmt.Sprintf("%s, check your direct messages for the verification link.", m.Author.Mention()))
}

func (h *CommandHandler) reply(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		logger.Error().Err(err).Str("channel_id", channelID).Msg("Failed to send channel message")
	}
}
