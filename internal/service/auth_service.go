package service

import (
	"context"
	"time"

	"paytrust-gateway/internal/core/domain"
	"paytrust-gateway/internal/core/ports"
	"paytrust-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const verificationTokenTTL = 24 * time.Hour

type authService struct {
	userRepo ports.UserRepository
	hashSvc  ports.HashService
	tokenSvc ports.TokenService
	emails   ports.EmailSender
	log      zerolog.Logger
}

// NewAuthService creates a new dashboard authentication service.
func NewAuthService(
	userRepo ports.UserRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	emails ports.EmailSender,
	log zerolog.Logger,
) ports.AuthService {
	return &authService{
		userRepo: userRepo,
		hashSvc:  hashSvc,
		tokenSvc: tokenSvc,
		emails:   emails,
		log:      log,
	}
}

// Register creates a new dashboard user and sends a verification email.
// Email delivery is best-effort: a failed send is logged, the registration
// still succeeds.
func (s *authService) Register(ctx context.Context, req ports.RegisterRequest) (*ports.RegisterResult, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	token, err := randomHex(32)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	expires := time.Now().Add(verificationTokenTTL)

	now := time.Now()
	user := &domain.User{
		ID:                  uuid.New(),
		Email:               req.Email,
		PasswordHash:        passwordHash,
		Role:                domain.RoleMerchant,
		BusinessName:        req.BusinessName,
		EmailVerified:       false,
		VerificationToken:   &token,
		VerificationExpires: &expires,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.InternalError(err)
	}

	if err := s.emails.SendVerificationEmail(ctx, user.Email, token); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("auth: verification email send failed")
	}

	return &ports.RegisterResult{
		UserID:            user.ID,
		Email:             user.Email,
		VerificationToken: token,
	}, nil
}

// Login verifies credentials and issues both session tokens. Unknown email
// and wrong password share one opaque error.
func (s *authService) Login(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if !ok {
		return nil, apperror.ErrInvalidCredentials()
	}

	if !user.EmailVerified {
		return nil, apperror.ErrEmailNotVerified()
	}

	accessToken, accessExpiry, err := s.tokenSvc.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	refreshToken, refreshExpiry, err := s.tokenSvc.IssueRefresh(user.ID, user.Role)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	return &ports.TokenPair{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		AccessExpiry:  accessExpiry,
		RefreshExpiry: refreshExpiry,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not reissued.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.tokenSvc.VerifyRefresh(refreshToken)
	if err != nil {
		return "", time.Time{}, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(err)
	}
	if user == nil {
		return "", time.Time{}, apperror.ErrInvalidToken()
	}

	accessToken, expiry, err := s.tokenSvc.IssueAccess(user.ID, user.Role)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(err)
	}
	return accessToken, expiry, nil
}

// VerifyEmail consumes a verification token.
func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.userRepo.GetByVerificationToken(ctx, token)
	if err != nil {
		return apperror.InternalError(err)
	}
	if user == nil {
		return apperror.ErrInvalidToken()
	}
	if user.VerificationExpires == nil || time.Now().After(*user.VerificationExpires) {
		return apperror.ErrTokenExpired()
	}

	user.EmailVerified = true
	user.VerificationToken = nil
	user.VerificationExpires = nil
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return apperror.InternalError(err)
	}
	return nil
}
