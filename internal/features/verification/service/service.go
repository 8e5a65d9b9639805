package service

import (
	"context"
	"fmt"

	"wallet-verify-backend/internal/common/logger"
	"wallet-verify-backend/internal/features/verification/models"
	"wallet-verify-backend/internal/platform/ethereum"
)

const defaultQueueSize = 64

// Config carries the community identifiers and link construction
// settings for the verification flow.
type Config struct {
	GuildID     string
	RoleID      string
	FrontendURL string
	QueueSize   int
}

// Submission is one HTTP-submitted proof, queued for processing on the
// worker goroutine.
type Submission struct {
	Token         string
	WalletAddress string
	Signature     string
}

// Service orchestrates the verification handshake: tokens issued from
// chat commands, proofs submitted over HTTP, role grants applied back
// through the chat gateway. Submissions are processed one at a time on
// a single worker, so grant logic never races with itself.
type Service struct {
	cfg       Config
	tokens    TokenRegistry
	allowlist Allowlist
	chat      ChatGateway

	verifySignature func(address, signature, message string) bool
	submissions     chan Submission
}

func NewService(cfg Config, tokens TokenRegistry, allowlist Allowlist, chat ChatGateway) *Service {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Service{
		cfg:             cfg,
		tokens:          tokens,
		allowlist:       allowlist,
		chat:            chat,
		verifySignature: ethereum.VerifySignature,
		submissions:     make(chan Submission, queueSize),
	}
}

// IssueToken creates a single-use token for userID and returns the
// verification link to deliver privately.
func (s *Service) IssueToken(userID string) (string, error) {
	tok, err := s.tokens.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("issue verification token: %w", err)
	}
	logger.Debug().Str("user_id", userID).Msg("Verification token issued")
	return fmt.Sprintf("%s?token=%s", s.cfg.FrontendURL, tok), nil
}

// Submit queues a proof for validation and returns immediately. The
// caller learns nothing about the outcome; a full queue drops the
// submission the same silent way every later failure is handled.
func (s *Service) Submit(sub Submission) {
	select {
	case s.submissions <- sub:
	default:
		logger.Error().Msg("Submission queue full, dropping verification attempt")
	}
}

// Start launches the worker goroutine that drains the submission queue
// until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("Verification worker stopped")
			return
		case sub := <-s.submissions:
			s.process(sub)
		}
	}
}

// process walks one submission through the validation pipeline. Every
// failure is terminal for the token: it was already consumed and is
// never restored.
func (s *Service) process(sub Submission) {
	userID, ok := s.tokens.Consume(sub.Token)
	if !ok {
		logger.Debug().Msg("Unknown or already consumed token")
		return
	}

	roles, err := s.chat.MemberRoles(s.cfg.GuildID, userID)
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("Member not resolvable in guild")
		return
	}

	message := models.SigningMessage(sub.WalletAddress)
	if !s.verifySignature(sub.WalletAddress, sub.Signature, message) {
		logger.Debug().Str("user_id", userID).Msg("Signature verification failed")
		return
	}

	if !s.allowlist.Contains(sub.WalletAddress) {
		logger.Debug().
			Str("user_id", userID).
			Str("wallet", sub.WalletAddress).
			Msg("Wallet address is not allowlisted")
		return
	}

	exists, err := s.chat.RoleExists(s.cfg.GuildID, s.cfg.RoleID)
	if err != nil || !exists {
		logger.Error().Err(err).Str("role_id", s.cfg.RoleID).Msg("Configured role not found in guild")
		return
	}

	for _, roleID := range roles {
		if roleID == s.cfg.RoleID {
			logger.Debug().Str("user_id", userID).Msg("User already has the role")
			return
		}
	}

	if err := s.chat.GrantRole(s.cfg.GuildID, userID, s.cfg.RoleID); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("Role grant failed")
		return
	}

	logger.Info().
		Str("user_id", userID).
		Str("wallet", sub.WalletAddress).
		Msg("Role granted")
}
