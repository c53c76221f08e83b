package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/pokernow/models"
	"github.com/Dosada05/pokernow/repositories"
	"github.com/Dosada05/pokernow/utils"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenTTL is the lifetime of an issued session token.
const TokenTTL = 7 * 24 * time.Hour

const (
	claimPlayerID = "player_id"
	claimRole     = "role"
)

type LoginInput struct {
	Provider models.AuthProvider `json:"provider" validate:"required,oneof=apple google phone"`
	Email    string              `json:"email,omitempty" validate:"omitempty,email"`
	StaffPIN string              `json:"staffPin,omitempty"`
}

type LoginResult struct {
	Token   string         `json:"token"`
	Player  *models.Player `json:"player"`
	Session models.Session `json:"session"`
}

// AuthService issues mock session tokens. There is no real identity check:
// a provider and optional email are trusted as given.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	ParseToken(token string) (models.Session, error)
	Me(ctx context.Context, session models.Session) (*models.Player, error)
}

type authService struct {
	playerRepo   repositories.PlayerRepository
	jwtSecret    []byte
	staffPINHash string
	logger       *slog.Logger
	now          func() time.Time
}

func NewAuthService(playerRepo repositories.PlayerRepository, jwtSecret, staffPINHash string, logger *slog.Logger) AuthService {
	return &authService{
		playerRepo:   playerRepo,
		jwtSecret:    []byte(jwtSecret),
		staffPINHash: staffPINHash,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	switch input.Provider {
	case models.ProviderApple, models.ProviderGoogle, models.ProviderPhone:
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", ErrValidationFailed, input.Provider)
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		email = fmt.Sprintf("mock-%s@pokernow.local", input.Provider)
	}

	player, err := s.findOrCreate(ctx, input.Provider, email)
	if err != nil {
		return nil, err
	}

	role := models.RolePlayer
	if input.StaffPIN != "" {
		if !utils.CheckPIN(input.StaffPIN, s.staffPINHash) {
			s.logger.Warn("staff pin rejected", slog.String("player_id", player.ID))
			return nil, ErrAuthenticationFailed
		}
		role = models.RoleAdmin
	}

	session := models.Session{PlayerID: player.ID, Role: role}
	token, err := s.sign(session)
	if err != nil {
		return nil, err
	}
	s.logger.Info("player logged in", slog.String("player_id", player.ID), slog.String("role", string(role)))
	return &LoginResult{Token: token, Player: player, Session: session}, nil
}

func (s *authService) findOrCreate(ctx context.Context, provider models.AuthProvider, email string) (*models.Player, error) {
	player, err := s.playerRepo.GetByEmail(ctx, email)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, repositories.ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to look up player: %w", err)
	}

	player = &models.Player{
		ID:             uuid.NewString(),
		PokerName:      strings.SplitN(email, "@", 2)[0],
		DisplaySetting: models.DisplayPublic,
		AuthProvider:   provider,
		Email:          email,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerEmailConflict) {
			// Lost a race with a concurrent first login for the same email.
			return s.playerRepo.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	s.logger.Info("player registered", slog.String("player_id", player.ID), slog.String("provider", string(provider)))
	return player, nil
}

func (s *authService) sign(session models.Session) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		claimPlayerID: session.PlayerID,
		claimRole:     string(session.Role),
		"iat":         now.Unix(),
		"exp":         now.Add(TokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *authService) ParseToken(tokenString string) (models.Session, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return models.Session{}, fmt.Errorf("%w: invalid token", ErrAuthenticationFailed)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Session{}, fmt.Errorf("%w: unexpected claims", ErrAuthenticationFailed)
	}
	playerID, _ := claims[claimPlayerID].(string)
	if playerID == "" {
		return models.Session{}, fmt.Errorf("%w: missing %s claim", ErrAuthenticationFailed, claimPlayerID)
	}
	roleStr, _ := claims[claimRole].(string)
	role := models.UserRole(roleStr)
	switch role {
	case models.RoleAdmin, models.RolePlayer:
	default:
		return models.Session{}, fmt.Errorf("%w: invalid role %q", ErrAuthenticationFailed, roleStr)
	}
	return models.Session{PlayerID: playerID, Role: role}, nil
}

func (s *authService) Me(ctx context.Context, session models.Session) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, session.PlayerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, entityErr(ErrPlayerNotFound, EntityPlayer, session.PlayerID)
		}
		return nil, err
	}
	return player, nil
}
