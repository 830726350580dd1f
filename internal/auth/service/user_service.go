package service

//go:generate mockgen -destination=../../mocks/mock_repositories.go -package=mocks github.com/consulio/auth-service/internal/auth/domain UserRepository,SessionRepository,RefreshTokenRepository,RevokedTokenRepository,ResetTokenRepository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/consulio/auth-service/config"
	"github.com/consulio/auth-service/internal/auth/domain"
	"github.com/consulio/auth-service/internal/auth/dto"
	"github.com/consulio/auth-service/internal/cache"
	autherror "github.com/consulio/auth-service/internal/errors"
	"github.com/consulio/auth-service/internal/mailer"
	"github.com/consulio/auth-service/internal/metrics"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tempLogoutDuration = 24 * time.Hour

type UserService struct {
	users         domain.UserRepository
	sessions      domain.SessionRepository
	refreshTokens domain.RefreshTokenRepository
	revokedTokens domain.RevokedTokenRepository
	resetTokens   domain.ResetTokenRepository
	tokenService  TokenGenerator
	mail          mailer.Mailer
	attempts      *cache.AttemptTracker
	access        *AccessEngine
	cfg           *config.Config
	log           *slog.Logger
}

func NewUserService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	refreshTokens domain.RefreshTokenRepository,
	revokedTokens domain.RevokedTokenRepository,
	resetTokens domain.ResetTokenRepository,
	tokenService TokenGenerator,
	mail mailer.Mailer,
	access *AccessEngine,
	cfg *config.Config,
	log *slog.Logger,
) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{
		users:         users,
		sessions:      sessions,
		refreshTokens: refreshTokens,
		revokedTokens: revokedTokens,
		resetTokens:   resetTokens,
		tokenService:  tokenService,
		mail:          mail,
		attempts:      cache.NewAttemptTracker(cfg.LoginCacheSize, time.Duration(cfg.LoginWindowMin)*time.Minute),
		access:        access,
		cfg:           cfg,
		log:           log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with the default role and issues a first token
// pair. The welcome mail is best-effort.
func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*domain.User, *dto.TokenResponse, error) {
	email := normalizeEmail(input.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, autherror.ErrEmailAlreadyInUse
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	hash := string(hashed)

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: &hash,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.mail.SendWelcome(ctx, user.Email); err != nil {
		s.log.Warn("welcome mail failed", "user_id", user.ID, "err", err)
	}

	return user, tokens, nil
}

// Login authenticates the credentials and issues a token pair.
func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.TokenResponse, error) {
	user, err := s.validateCredentials(ctx, normalizeEmail(input.Email), input.Password)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()

	return tokens, nil
}

// validateCredentials composes the throttle, the password check and the
// access decision. Every authentication failure increments the throttle;
// unexpected storage errors fail closed without incrementing so a transient
// outage cannot lock users out.
func (s *UserService) validateCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	if a, ok := s.attempts.Get(email); ok && a.Count >= s.cfg.LoginMaxAttempts {
		metrics.ThrottleRejections.Inc()
		return nil, &autherror.AccountLockedError{RetryAfter: time.Until(a.ExpiresAt)}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.recordFailure(email)
		return nil, autherror.ErrInvalidCredentials
	}

	// Only the configured admin identity may authenticate with the admin
	// role; anything else holding that role is an impersonation attempt and
	// is rejected before the password is even checked.
	if user.IsAdmin() && !strings.EqualFold(user.Email, s.cfg.AdminEmail) {
		s.recordFailure(email)
		return nil, autherror.ErrInvalidCredentials
	}

	if user.PasswordHash == nil {
		s.recordFailure(email)
		return nil, autherror.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(email)
		return nil, autherror.ErrInvalidCredentials
	}

	// The admin bypasses the disabled/lockout/maintenance checks, but not
	// the throttle above.
	if !user.IsAdmin() {
		decision := s.access.Check(user)
		if !decision.CanAccess {
			s.recordFailure(email)
			return nil, &autherror.AccessDeniedError{
				Reason:         decision.Reason,
				RemainingHours: decision.RemainingHours,
			}
		}
	}

	s.attempts.Reset(email)

	return user, nil
}

func (s *UserService) recordFailure(email string) {
	s.attempts.RecordFailure(email)
	metrics.LoginAttempts.WithLabelValues("failure").Inc()
}

// issueTokens mints a pair, opens a session and rotates the refresh chain.
// The refresh store rotation is a single conditional statement, so two
// racing logins cannot both keep an active chain.
func (s *UserService) issueTokens(ctx context.Context, user *domain.User) (*dto.TokenResponse, error) {
	pair, err := s.tokenService.GeneratePair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	session := &domain.Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Token:        pair.AccessToken,
		ExpiresAt:    pair.AccessExpiresAt,
		IsActive:     true,
		LastActivity: now,
		CreatedAt:    now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	refresh := &domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     pair.RefreshToken,
		ExpiresAt: pair.RefreshExpiresAt,
		IsActive:  true,
		CreatedAt: now,
	}
	if err := s.refreshTokens.Store(ctx, refresh); err != nil {
		return nil, err
	}

	// Session-ceiling policy lives here, not in the registry: evict the
	// oldest when the configured limit is exceeded.
	count, err := s.sessions.CountActiveByUserID(ctx, user.ID)
	if err != nil {
		s.log.Warn("session count failed", "user_id", user.ID, "err", err)
	} else if count > s.cfg.MaxActiveSessions {
		if err := s.sessions.DeactivateOldestByUserID(ctx, user.ID, domain.ReasonSessionLimit); err != nil {
			s.log.Warn("oldest session eviction failed", "user_id", user.ID, "err", err)
		}
	}

	metrics.TokensIssued.WithLabelValues(string(TokenClassAccess)).Inc()
	metrics.TokensIssued.WithLabelValues(string(TokenClassRefresh)).Inc()

	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessExpiresAt,
	}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The new session and
// refresh token are durably created before the presented token is touched, so
// a crash mid-operation leaves the old token usable rather than locking the
// user out.
func (s *UserService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.TokenResponse, error) {
	if _, err := s.tokenService.Verify(input.RefreshToken, TokenClassRefresh); err != nil {
		s.discardRefreshToken(ctx, input.RefreshToken)
		return nil, autherror.ErrRefreshTokenInvalid
	}

	stored, err := s.refreshTokens.GetByToken(ctx, input.RefreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || !stored.IsActive || time.Now().After(stored.ExpiresAt) {
		s.discardRefreshToken(ctx, input.RefreshToken)
		return nil, autherror.ErrRefreshTokenInvalid
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.discardRefreshToken(ctx, input.RefreshToken)
		return nil, autherror.ErrRefreshTokenInvalid
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	// The rotation inside Store already deactivated the old chain; this
	// explicit pass covers the presented token as defense in depth.
	if _, err := s.refreshTokens.DeactivateByToken(ctx, input.RefreshToken, domain.ReasonRotated); err != nil {
		s.log.Warn("old refresh token deactivation failed", "err", err)
	}

	return tokens, nil
}

// discardRefreshToken proactively deactivates a presented token that failed
// verification, so a replay of it cannot stay active indefinitely.
func (s *UserService) discardRefreshToken(ctx context.Context, raw string) {
	if _, err := s.refreshTokens.DeactivateByToken(ctx, raw, domain.ReasonInvalidPresented); err != nil {
		s.log.Warn("presented refresh token deactivation failed", "err", err)
	}
}

// Logout revokes the presented access token, closes its session and
// deactivates the holder's refresh chain.
func (s *UserService) Logout(ctx context.Context, accessToken string) error {
	var userID *string
	expiresAt := time.Now().Add(s.tokenService.GetAccessTokenExpiry())

	// Best-effort decode: the ledger entry is still written when the token
	// cannot be parsed.
	if claims := s.tokenService.Decode(accessToken); claims != nil {
		if claims.UserID != "" {
			uid := claims.UserID
			userID = &uid
		}
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
	}

	if err := s.revokedTokens.Revoke(ctx, accessToken, userID, expiresAt); err != nil {
		return err
	}
	metrics.TokensRevoked.Inc()

	closed, err := s.sessions.Deactivate(ctx, accessToken, domain.ReasonLogout)
	if err != nil {
		return err
	}
	if !closed {
		s.log.Warn("logout for token with no open session")
	}

	if userID != nil {
		if _, err := s.refreshTokens.DeactivateAllByUserID(ctx, *userID, domain.ReasonLogout); err != nil {
			return err
		}
	}

	return nil
}

// ValidateToken is the check run by downstream request-authorization
// middleware: signature and class, then the revocation ledger, then the
// session registry.
func (s *UserService) ValidateToken(ctx context.Context, raw string) (*JWTCustomClaims, error) {
	claims, err := s.tokenService.Verify(raw, TokenClassAccess)
	if err != nil {
		return nil, autherror.ErrTokenInvalid
	}

	revoked, err := s.revokedTokens.IsRevoked(ctx, raw)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, autherror.ErrTokenInvalid
	}

	live, err := s.sessions.IsActive(ctx, raw)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, autherror.ErrTokenInvalid
	}

	if err := s.sessions.TouchActivity(ctx, raw); err != nil {
		s.log.Warn("session activity touch failed", "err", err)
	}

	return claims, nil
}

// SendPasswordResetEmail issues a fresh single-use reset token. Unknown
// addresses are a silent no-op so the endpoint cannot be used to enumerate
// accounts.
func (s *UserService) SendPasswordResetEmail(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		s.log.Info("password reset requested for unknown email")
		return nil
	}

	token := &domain.ResetToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.ResetExpiryMin) * time.Minute),
		CreatedAt: time.Now(),
	}
	if err := s.resetTokens.Replace(ctx, token); err != nil {
		return err
	}

	if err := s.mail.SendPasswordReset(ctx, user.Email, token.Token); err != nil {
		s.log.Warn("password reset mail failed", "user_id", user.ID, "err", err)
	}

	return nil
}

// ResetPassword consumes a reset token, sets the new password and closes
// every outstanding credential for the user.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	stored, err := s.resetTokens.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if stored == nil {
		return autherror.ErrResetTokenInvalid
	}
	if time.Now().After(stored.ExpiresAt) {
		if err := s.resetTokens.Delete(ctx, token); err != nil {
			s.log.Warn("expired reset token delete failed", "err", err)
		}
		return autherror.ErrResetTokenInvalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePasswordHash(ctx, stored.UserID, string(hashed)); err != nil {
		return err
	}

	if err := s.resetTokens.Delete(ctx, token); err != nil {
		return err
	}

	if _, err := s.sessions.DeactivateAllByUserID(ctx, stored.UserID, domain.ReasonPasswordReset); err != nil {
		return err
	}
	if _, err := s.refreshTokens.DeactivateAllByUserID(ctx, stored.UserID, domain.ReasonPasswordReset); err != nil {
		return err
	}

	s.access.Invalidate(stored.UserID)

	return nil
}
