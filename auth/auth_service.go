// Package auth implements the credential and session-lifecycle core of the
// blog platform: registration, password login with attempt throttling, token
// issuance and rotation, and logout.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-blog-server/auth/sessions"
	"github.com/jrsteele09/go-blog-server/token"
	"github.com/jrsteele09/go-blog-server/users"
)

// Session store key prefixes. One refresh-token slot per user: issuing a new
// refresh token overwrites the previous one, so at most one is valid at a time.
const (
	refreshTokenKeyPrefix  = "refresh_token:"
	loginAttemptsKeyPrefix = "login_attempts:"
)

// Default throttling policy.
const (
	defaultMaxAttempts   = 3
	defaultBlockDuration = 2 * time.Hour
)

// TokenPair is the issued access/refresh token pair returned to callers.
// Both are opaque strings from the caller's point of view.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ThrottlePolicy configures failed-login throttling. The block window is
// anchored to the first failure and is not extended by further failures.
type ThrottlePolicy struct {
	MaxAttempts   int64
	BlockDuration time.Duration
}

// RegisterParams holds the fields required to create a password account.
type RegisterParams struct {
	Name     string
	Username string
	Email    string
	Password string
}

// Repos holds all repository dependencies for the Service
type Repos struct {
	Users    users.UserRepo // The user directory
	Sessions sessions.Store // Refresh-token slots and failed-login counters
}

// Service orchestrates the credential hasher, token signers, session store
// and user directory. It holds no mutable state of its own; concurrent
// requests are safe and serialization happens in the session store.
type Service struct {
	repos         Repos
	hasher        PasswordHasher
	accessSigner  *token.Signer
	refreshSigner *token.Signer
	throttle      ThrottlePolicy
	log           zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithThrottlePolicy overrides the default failed-login throttling policy.
func WithThrottlePolicy(policy ThrottlePolicy) ServiceOption {
	return func(s *Service) {
		s.throttle = policy
	}
}

// WithLogger sets the structured logger used by the service.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService initializes a new Service with required dependencies.
// The access and refresh signers must be configured with distinct secrets;
// tokens issued by one must never verify against the other.
func NewService(
	repos Repos,
	hasher PasswordHasher,
	accessSigner, refreshSigner *token.Signer,
	options ...ServiceOption,
) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewService] Sessions store is required")
	}
	if hasher == nil {
		return nil, errors.New("[NewService] hasher is required")
	}
	if accessSigner == nil || refreshSigner == nil {
		return nil, errors.New("[NewService] access and refresh signers are required")
	}

	service := &Service{
		repos:         repos,
		hasher:        hasher,
		accessSigner:  accessSigner,
		refreshSigner: refreshSigner,
		throttle: ThrottlePolicy{
			MaxAttempts:   defaultMaxAttempts,
			BlockDuration: defaultBlockDuration,
		},
		log: zerolog.Nop(),
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// Register creates a new password account. It fails with DuplicateEmailErr or
// DuplicateUsernameErr on conflict. Registration does not log the user in.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*users.User, error) {
	existing, err := s.repos.Users.GetByEmail(ctx, params.Email)
	if err != nil {
		return nil, fmt.Errorf("[Service.Register] GetByEmail: %w", err)
	}
	if existing != nil {
		return nil, DuplicateEmailErr
	}

	existing, err = s.repos.Users.GetByUsername(ctx, params.Username)
	if err != nil {
		return nil, fmt.Errorf("[Service.Register] GetByUsername: %w", err)
	}
	if existing != nil {
		return nil, DuplicateUsernameErr
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("[Service.Register] hash password: %w", err)
	}

	created, err := s.repos.Users.Create(ctx, &users.User{
		Name:         params.Name,
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: passwordHash,
		Roles:        []users.RoleType{users.RoleReader},
	})
	if err != nil {
		return nil, fmt.Errorf("[Service.Register] create user: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created.WithoutPasswordHash(), nil
}

// Login verifies the credentials and issues a fresh token pair. Repeated
// failures for the same email accumulate toward a lockout; the lockout check
// runs before the directory lookup so locked accounts never reach password
// verification. A federated-only account (no password hash) fails the same
// way as a wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if err := s.checkLoginAttempts(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("[Service.Login] GetByEmail: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, s.failLoginAttempt(ctx, email)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, s.failLoginAttempt(ctx, email)
	}

	// Clear attempts on successful login
	if err := s.repos.Sessions.Delete(ctx, loginAttemptsKeyPrefix+email); err != nil {
		return nil, fmt.Errorf("[Service.Login] clear login attempts: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return s.issueTokens(ctx, user.ID, user.Email)
}

// Refresh rotates a refresh token: the presented token must verify against
// the refresh secret AND match the stored slot for its user. The old token is
// invalidated before the new pair is issued, so two valid refresh tokens
// never coexist and a replayed token fails. Every failure mode collapses into
// InvalidRefreshTokenErr so token probing gains no information.
func (s *Service) Refresh(ctx context.Context, oldRefreshToken string) (*TokenPair, error) {
	payload, err := s.refreshSigner.Verify(oldRefreshToken)
	if err != nil {
		s.log.Debug().Err(err).Msg("refresh token verification failed")
		return nil, InvalidRefreshTokenErr
	}

	storedToken, err := s.repos.Sessions.Get(ctx, refreshTokenKeyPrefix+payload.Subject)
	if err != nil {
		return nil, fmt.Errorf("[Service.Refresh] sessions.Get: %w", err)
	}
	if storedToken == "" || storedToken != oldRefreshToken {
		s.log.Debug().Str("user_id", payload.Subject).Msg("refresh token not in store or superseded")
		return nil, InvalidRefreshTokenErr
	}

	user, err := s.repos.Users.GetByID(ctx, payload.Subject)
	if err != nil {
		return nil, fmt.Errorf("[Service.Refresh] GetByID: %w", err)
	}
	if user == nil {
		s.log.Debug().Str("user_id", payload.Subject).Msg("refresh for deleted user")
		return nil, InvalidRefreshTokenErr
	}

	// Invalidate the old token before issuing the new pair. The atomic
	// compare-and-delete is the serialization point for concurrent refresh
	// calls: of two racers on the same token, exactly one delete succeeds.
	deleted, err := s.repos.Sessions.CompareAndDelete(ctx, refreshTokenKeyPrefix+payload.Subject, oldRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("[Service.Refresh] invalidate old token: %w", err)
	}
	if !deleted {
		s.log.Debug().Str("user_id", payload.Subject).Msg("refresh token superseded by concurrent rotation")
		return nil, InvalidRefreshTokenErr
	}

	return s.issueTokens(ctx, user.ID, user.Email)
}

// Logout deletes the stored refresh token for userID. Idempotent: logging out
// a user with no stored token succeeds.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.repos.Sessions.Delete(ctx, refreshTokenKeyPrefix+userID); err != nil {
		return fmt.Errorf("[Service.Logout] sessions.Delete: %w", err)
	}
	s.log.Info().Str("user_id", userID).Msg("user logged out")
	return nil
}

// ValidateCredentials checks an email/password pair and returns the matching
// user record with its password hash stripped, or nil on any credential
// failure. Unlike Login, this path performs no attempt counting: it backs the
// interactive login-strategy hook, not the token-issuing endpoint.
func (s *Service) ValidateCredentials(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("[Service.ValidateCredentials] GetByEmail: %w", err)
	}
	if user == nil || user.PasswordHash == "" || !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil
	}
	return user.WithoutPasswordHash(), nil
}

// LoginFederated resolves or creates the user for a successful identity
// provider callback and feeds it into the same token-issuance path as
// password login. Federated accounts are created without a password hash.
func (s *Service) LoginFederated(ctx context.Context, provider users.Provider, email, name string) (*TokenPair, error) {
	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("[Service.LoginFederated] GetByEmail: %w", err)
	}

	if user == nil {
		user, err = s.repos.Users.Create(ctx, &users.User{
			Name:      name,
			Username:  email,
			Email:     email,
			Providers: []users.Provider{provider},
			Roles:     []users.RoleType{users.RoleReader},
			Verified:  true, // The provider has verified the email
		})
		if err != nil {
			return nil, fmt.Errorf("[Service.LoginFederated] create user: %w", err)
		}
		s.log.Info().Str("user_id", user.ID).Str("provider", provider.Name).Msg("federated user created")
	} else if !user.HasProvider(provider.Name) {
		user.Providers = append(user.Providers, provider)
		if user, err = s.repos.Users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("[Service.LoginFederated] link provider: %w", err)
		}
	}

	s.log.Info().Str("user_id", user.ID).Str("provider", provider.Name).Msg("federated login")
	return s.issueTokens(ctx, user.ID, user.Email)
}

// VerifyAccessToken verifies a bearer access token and returns its payload.
// Used by the request-guard middleware.
func (s *Service) VerifyAccessToken(rawToken string) (token.Payload, error) {
	return s.accessSigner.Verify(rawToken)
}

// issueTokens creates a fresh access/refresh pair and persists the refresh
// token in the user's single slot, superseding any previous one.
func (s *Service) issueTokens(ctx context.Context, userID, email string) (*TokenPair, error) {
	payload := token.Payload{Subject: userID, Email: email}

	accessToken, err := s.accessSigner.Issue(payload)
	if err != nil {
		return nil, fmt.Errorf("[Service.issueTokens] issue access token: %w", err)
	}
	refreshToken, err := s.refreshSigner.Issue(payload)
	if err != nil {
		return nil, fmt.Errorf("[Service.issueTokens] issue refresh token: %w", err)
	}

	if err := s.repos.Sessions.Put(ctx, refreshTokenKeyPrefix+userID, refreshToken, s.refreshSigner.TTL()); err != nil {
		return nil, fmt.Errorf("[Service.issueTokens] store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// checkLoginAttempts fails with AccountLockedError once the counter for email
// has reached the threshold. This runs before any directory access.
func (s *Service) checkLoginAttempts(ctx context.Context, email string) error {
	attemptsStr, err := s.repos.Sessions.Get(ctx, loginAttemptsKeyPrefix+email)
	if err != nil {
		return fmt.Errorf("[Service.checkLoginAttempts] sessions.Get: %w", err)
	}
	if attemptsStr == "" {
		return nil
	}

	attempts, err := strconv.ParseInt(attemptsStr, 10, 64)
	if err != nil {
		return fmt.Errorf("[Service.checkLoginAttempts] malformed counter %q: %w", attemptsStr, err)
	}
	if attempts >= s.throttle.MaxAttempts {
		s.log.Warn().Str("email", email).Int64("attempts", attempts).Msg("login blocked by throttle")
		return &AccountLockedError{RetryAfter: s.throttle.BlockDuration}
	}
	return nil
}

// failLoginAttempt records a failed attempt and returns the credential error
// handed to the caller. Deliberately identical whether the email is unknown,
// the account is federated-only, or the password is wrong.
func (s *Service) failLoginAttempt(ctx context.Context, email string) error {
	count, err := s.repos.Sessions.IncrementWithExpiry(ctx, loginAttemptsKeyPrefix+email, s.throttle.BlockDuration)
	if err != nil {
		return fmt.Errorf("[Service.failLoginAttempt] increment attempts: %w", err)
	}
	s.log.Debug().Str("email", email).Int64("attempts", count).Msg("failed login attempt")
	return InvalidCredentialsErr
}
