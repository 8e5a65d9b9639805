package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"wallet-verify-backend/internal/common/logger"
)

// Client wraps a discordgo session behind the handful of guild and
// messaging operations the verification flow needs.
type Client struct {
	session *discordgo.Session
}

func NewClient(botToken string) (*Client, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	return &Client{session: session}, nil
}

// Session exposes the underlying session for event handler registration.
func (c *Client) Session() *discordgo.Session {
	return c.session
}

func (c *Client) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.session.Close()
}

// MemberRoles returns the role IDs held by userID in guildID. The state
// cache is consulted first; a cache miss falls back to the REST API.
func (c *Client) MemberRoles(guildID, userID string) ([]string, error) {
	member, err := c.session.State.Member(guildID, userID)
	if err != nil {
		member, err = c.session.GuildMember(guildID, userID)
		if err != nil {
			return nil, fmt.Errorf("fetch guild member %s: %w", userID, err)
		}
	}
	return member.Roles, nil
}

// RoleExists reports whether roleID is defined in guildID.
func (c *Client) RoleExists(guildID, roleID string) (bool, error) {
	if _, err := c.session.State.Role(guildID, roleID); err == nil {
		return true, nil
	}

	roles, err := c.session.GuildRoles(guildID)
	if err != nil {
		return false, fmt.Errorf("fetch guild roles: %w", err)
	}
	for _, role := range roles {
		if role.ID == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) GrantRole(guildID, userID, roleID string) error {
	if err := c.session.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
		return fmt.Errorf("add role %s to member %s: %w", roleID, userID, err)
	}
	return nil
}

// SendDirectMessage opens (or reuses) the DM channel with userID and
// sends content there.
func (c *Client) SendDirectMessage(userID, content string) error {
	channel, err := c.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("open DM channel with %s: %w", userID, err)
	}
	if _, err := c.session.ChannelMessageSend(channel.ID, content); err != nil {
		return fmt.Errorf("send DM to %s: %w", userID, err)
	}
	logger.Debug().Str("user_id", userID).Msg("Direct message sent")
	return nil
}
