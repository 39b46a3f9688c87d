package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/playtube/playtube-api/internal/domain/entity"
	repo "github.com/playtube/playtube-api/internal/domain/repository"
	"github.com/playtube/playtube-api/pkg/apperr"
	"github.com/playtube/playtube-api/pkg/helpers"
)

// All refresh failures surface the same message so callers cannot tell
// expiry, bad signature, and revocation apart.
const msgInvalidRefresh = "invalid refresh token"

// Service orchestrates the credential and session-token lifecycle: password
// storage and verification, token pair issuance and rotation, and the
// channel profile aggregation.
type Service struct {
	Users  repo.UserRepository
	JWT    *helpers.JWTManager
	Media  MediaStore
	Redis  *redis.Client
	Logger *logrus.Logger

	// ProfileCacheTTL bounds the anonymous channel-profile cache; zero or a
	// nil Redis client disables caching.
	ProfileCacheTTL time.Duration
}

func NewService(users repo.UserRepository, jwt *helpers.JWTManager, media MediaStore, rdb *redis.Client, logger *logrus.Logger, profileCacheTTL time.Duration) *Service {
	return &Service{
		Users:           users,
		JWT:             jwt,
		Media:           media,
		Redis:           rdb,
		Logger:          logger,
		ProfileCacheTTL: profileCacheTTL,
	}
}

// TokenPair is an access/refresh token pair minted together on login or
// rotation. The refresh token is also persisted on the user record.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func profileCacheKey(username string) string {
	return "channel:profile:" + strings.ToLower(username)
}

// sanitized returns a copy safe to hand to the transport layer.
func sanitized(u *entity.User) *entity.User {
	out := *u
	out.Password = ""
	out.RefreshToken = ""
	return &out
}

type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *Upload
	CoverImage *Upload
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if fullName == "" || email == "" || username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apperr.BadRequest("all fields are required")
	}

	exists, err := s.Users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, apperr.Internal("failed to check existing user", err)
	}
	if exists {
		return nil, apperr.Conflict("user with email or username already exists")
	}

	if in.Avatar == nil {
		return nil, apperr.BadRequest("avatar file is required")
	}
	avatarURL, err := s.Media.Upload(ctx, "avatars", in.Avatar)
	if err != nil || avatarURL == "" {
		return nil, apperr.BadRequest("avatar file is required", err)
	}

	coverURL := ""
	if in.CoverImage != nil {
		coverURL, err = s.Media.Upload(ctx, "covers", in.CoverImage)
		if err != nil {
			// cover image is optional; a failed upload means field omitted
			s.Logger.WithError(err).WithField("username", username).Warn("cover image upload failed")
			coverURL = ""
		}
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	u := &entity.User{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		Password:      hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperr.Conflict("user with email or username already exists")
		}
		return nil, apperr.Internal("failed to register user", err)
	}

	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user registered")
	return sanitized(u), nil
}

func (s *Service) issueTokens(u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return TokenPair{}, apperr.Internal("failed to generate tokens", err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		return TokenPair{}, apperr.Internal("failed to generate tokens", err)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Login authenticates by username or email (either suffices) and issues a
// fresh token pair. The stored refresh token is overwritten, which silently
// invalidates any session issued earlier.
func (s *Service) Login(ctx context.Context, username, email, password string) (*entity.User, TokenPair, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" && email == "" {
		return nil, TokenPair{}, apperr.BadRequest("username or email is required")
	}
	if password == "" {
		return nil, TokenPair{}, apperr.BadRequest("password is required")
	}

	u, err := s.Users.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, TokenPair{}, apperr.NotFound("user does not exist")
		}
		return nil, TokenPair{}, apperr.Internal("failed to look up user", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, TokenPair{}, apperr.Unauthorized("invalid user credentials")
	}

	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if err := s.Users.SetRefreshToken(ctx, u.ID, pair.RefreshToken); err != nil {
		return nil, TokenPair{}, apperr.Internal("failed to persist refresh token", err)
	}

	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user logged in")
	return sanitized(u), pair, nil
}

// Logout clears the stored refresh token. It is idempotent and best-effort:
// a stale lookup or storage hiccup still counts as logged out.
func (s *Service) Logout(ctx context.Context, userID string) {
	if err := s.Users.ClearRefreshToken(ctx, userID); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("failed to clear refresh token")
	}
}

// Refresh rotates the token pair. The presented token must verify and must
// equal the stored value; the overwrite is conditional on that same value so
// concurrent refreshes of one stale token have exactly one winner.
func (s *Service) Refresh(ctx context.Context, presented string) (TokenPair, error) {
	if presented == "" {
		return TokenPair{}, apperr.Unauthorized(msgInvalidRefresh)
	}
	claims, err := s.JWT.ParseRefreshToken(presented)
	if err != nil {
		return TokenPair{}, apperr.Unauthorized(msgInvalidRefresh, err)
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, apperr.Unauthorized(msgInvalidRefresh)
		}
		return TokenPair{}, apperr.Internal("failed to look up user", err)
	}

	pair, err := s.issueTokens(u)
	if err != nil {
		return TokenPair{}, err
	}
	ok, err := s.Users.RotateRefreshToken(ctx, u.ID, presented, pair.RefreshToken)
	if err != nil {
		return TokenPair{}, apperr.Internal("failed to rotate refresh token", err)
	}
	if !ok {
		// superseded or cleared since verification: treat as reuse
		return TokenPair{}, apperr.Unauthorized(msgInvalidRefresh)
	}

	s.Logger.WithField("user_id", u.ID).Debug("token pair rotated")
	return pair, nil
}

// ChangePassword verifies the old password and stores a new hash. The
// refresh token is deliberately left untouched: existing sessions stay
// valid across a password change.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal("failed to look up user", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return apperr.BadRequest("invalid current password")
	}
	if strings.TrimSpace(newPassword) == "" {
		return apperr.BadRequest("new password is required")
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	if err := s.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return apperr.Internal("failed to update password", err)
	}
	s.Logger.WithField("user_id", userID).Info("password changed")
	return nil
}

func (s *Service) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to look up user", err)
	}
	return sanitized(u), nil
}

func (s *Service) UpdateAccount(ctx context.Context, userID, fullName, email string) (*entity.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" && email == "" {
		return nil, apperr.BadRequest("full name or email is required")
	}
	u, err := s.Users.UpdateAccount(ctx, userID, fullName, email)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, apperr.NotFound("user not found")
		case errors.Is(err, repo.ErrDuplicate):
			return nil, apperr.Conflict("email already in use")
		}
		return nil, apperr.Internal("failed to update account", err)
	}
	s.invalidateProfileCache(ctx, u.Username)
	return sanitized(u), nil
}

func (s *Service) UpdateAvatar(ctx context.Context, userID string, up *Upload) (*entity.User, error) {
	if up == nil {
		return nil, apperr.BadRequest("avatar file is required")
	}
	url, err := s.Media.Upload(ctx, "avatars", up)
	if err != nil || url == "" {
		return nil, apperr.BadRequest("avatar file is required", err)
	}
	u, err := s.Users.UpdateAvatar(ctx, userID, url)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to update avatar", err)
	}
	s.invalidateProfileCache(ctx, u.Username)
	return sanitized(u), nil
}

func (s *Service) UpdateCoverImage(ctx context.Context, userID string, up *Upload) (*entity.User, error) {
	if up == nil {
		return nil, apperr.BadRequest("cover image file is required")
	}
	url, err := s.Media.Upload(ctx, "covers", up)
	if err != nil || url == "" {
		return nil, apperr.BadRequest("cover image file is required", err)
	}
	u, err := s.Users.UpdateCoverImage(ctx, userID, url)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to update cover image", err)
	}
	s.invalidateProfileCache(ctx, u.Username)
	return sanitized(u), nil
}

// ChannelProfile resolves a user as a channel with aggregated subscription
// counts. Anonymous lookups are served read-through from Redis; viewer-aware
// lookups always hit the store because is_subscribed depends on the viewer.
func (s *Service) ChannelProfile(ctx context.Context, username, viewerID string) (*entity.ChannelProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.BadRequest("username is required")
	}

	cacheable := viewerID == "" && s.Redis != nil && s.ProfileCacheTTL > 0
	if cacheable {
		var cached entity.ChannelProfile
		hit, err := helpers.RedisGetJSON(ctx, s.Redis, profileCacheKey(username), &cached)
		if err != nil {
			s.Logger.WithError(err).WithField("username", username).Warn("profile cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	p, err := s.Users.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("channel does not exist")
		}
		return nil, apperr.Internal("failed to load channel profile", err)
	}

	if cacheable {
		if err := helpers.RedisSetJSON(ctx, s.Redis, profileCacheKey(username), p, s.ProfileCacheTTL); err != nil {
			s.Logger.WithError(err).WithField("username", username).Warn("profile cache write failed")
		}
	}
	return p, nil
}

func (s *Service) invalidateProfileCache(ctx context.Context, username string) {
	if s.Redis == nil || s.ProfileCacheTTL <= 0 {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, profileCacheKey(username)); err != nil {
		s.Logger.WithError(err).WithField("username", username).Warn("profile cache invalidation failed")
	}
}
