package service

// TokenRegistry issues and atomically consumes single-use verification
// tokens.
type TokenRegistry interface {
	Issue(userID string) (string, error)
	Consume(token string) (string, bool)
}

// Allowlist answers membership for normalized wallet addresses.
type Allowlist interface {
	Contains(address string) bool
}

// ChatGateway is the narrow slice of the chat platform the verification
// flow needs. Implemented by platform/discord.Client.
type ChatGateway interface {
	// MemberRoles returns the role IDs held by userID in guildID, or an
	// error when the member cannot be resolved.
	MemberRoles(guildID, userID string) ([]string, error)
	RoleExists(guildID, roleID string) (bool, error)
	GrantRole(guildID, userID, roleID string) error
	SendDirectMessage(userID, content string) error
}
