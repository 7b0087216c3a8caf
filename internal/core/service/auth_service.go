package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

const confirmationSubject = "Confirm your email with Organizational Odyssey!"

// AuthConfig carries the knobs of the account lifecycle.
type AuthConfig struct {
	JWTSecret string
	// SessionTTL bounds the lifetime of a login. Defaults to 24h.
	SessionTTL time.Duration
	// ConfirmTTL bounds the age of a confirmation token. Zero disables expiry.
	ConfirmTTL time.Duration
	// PublicBaseURL prefixes the confirmation link, e.g. https://odyssey.example.com.
	PublicBaseURL string
}

// AuthDeps groups the collaborators of AuthService.
type AuthDeps struct {
	Users    ports.UserRepository
	Tx       ports.TxManager
	Tokens   ports.TokenCipher
	Ledger   ports.TokenLedger
	Sessions ports.SessionStore
	Mailer   ports.Mailer
}

// AuthService implements registration, confirmation, login and logout.
type AuthService struct {
	deps AuthDeps
	cfg  AuthConfig
	log  zerolog.Logger
	now  func() time.Time
}

type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthService(deps AuthDeps, cfg AuthConfig, log zerolog.Logger) *AuthService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &AuthService{deps: deps, cfg: cfg, log: log, now: time.Now}
}

// Register creates an unconfirmed account and mails its confirmation link
// once the unit of work has committed. When delivery fails the unconfirmed
// account is removed again so the address can register afresh.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var (
		created *domain.User
		token   string
	)
	err = s.deps.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		_, err := s.deps.Users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			return domain.ErrUserExists
		case !errors.Is(err, domain.ErrUserNotFound):
			return err
		}

		created, err = s.deps.Users.Create(ctx, &domain.User{
			Email:        email,
			PasswordHash: string(hash),
			CreatedAt:    s.now().UTC(),
		})
		if err != nil {
			return err
		}

		token, err = s.deps.Tokens.Seal(created.Email, s.now())
		if err != nil {
			return fmt.Errorf("seal confirmation token: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.deps.Mailer.Send(ctx, s.confirmationMessage(created.Email, token)); err != nil {
		s.discardUnconfirmed(ctx, created.Email)
		return nil, fmt.Errorf("send confirmation: %w", err)
	}

	s.log.Info().Int64("user_id", created.ID).Str("email", created.Email).Msg("account registered")
	return created, nil
}

// discardUnconfirmed rolls back a registration whose confirmation never left.
func (s *AuthService) discardUnconfirmed(ctx context.Context, email string) {
	ctx = context.WithoutCancel(ctx)
	err := s.deps.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		return s.deps.Users.DeleteUnconfirmed(ctx, email)
	})
	if err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("discard unconfirmed account")
	}
}

// Login checks, in order, that the account exists, is confirmed and that the
// password matches, then issues a signed session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.Session, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	var user *domain.User
	err := s.deps.Tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.deps.Users.FindByEmail(ctx, email)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if !user.EmailConfirmed {
		return nil, nil, domain.ErrEmailNotConfirmed
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// Confirm redeems a confirmation token. Malformed, tampered, expired, reused
// and orphaned tokens all yield domain.ErrInvalidToken.
func (s *AuthService) Confirm(ctx context.Context, token string) (*domain.User, error) {
	email, issuedAt, err := s.deps.Tokens.Open(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("confirmation token rejected")
		return nil, domain.ErrInvalidToken
	}
	if s.cfg.ConfirmTTL > 0 && s.now().Sub(issuedAt) > s.cfg.ConfirmTTL {
		return nil, domain.ErrInvalidToken
	}

	var (
		user     *domain.User
		redeemed bool
	)
	err = s.deps.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		// The callback may run again after a transient abort.
		if redeemed {
			if err := s.deps.Ledger.Release(ctx, token); err != nil {
				return fmt.Errorf("release token: %w", err)
			}
			redeemed = false
		}

		var err error
		user, err = s.deps.Users.FindByEmail(ctx, email)
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidToken
		}
		if err != nil {
			return err
		}
		if user.EmailConfirmed {
			return domain.ErrInvalidToken
		}

		if err := s.deps.Users.MarkEmailConfirmed(ctx, email); err != nil {
			return err
		}

		// Redeemed last so a failed write never burns the token.
		first, err := s.deps.Ledger.Redeem(ctx, token, s.cfg.ConfirmTTL)
		if err != nil {
			return fmt.Errorf("redeem token: %w", err)
		}
		if !first {
			return domain.ErrInvalidToken
		}
		redeemed = true
		user.EmailConfirmed = true
		return nil
	})
	if err != nil {
		if redeemed {
			if rerr := s.deps.Ledger.Release(context.WithoutCancel(ctx), token); rerr != nil {
				s.log.Error().Err(rerr).Msg("release confirmation token")
			}
		}
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Msg("account confirmed")
	return user, nil
}

// Logout revokes the session until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, session ports.Session) error {
	if session.JTI == "" {
		return domain.ErrInvalidToken
	}
	if err := s.deps.Sessions.Revoke(ctx, session.JTI, session.ExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.log.Info().Int64("user_id", session.UserID).Msg("logged out")
	return nil
}

// ParseSession verifies the signature and expiry of token and rejects
// revoked sessions. A failing revocation lookup is logged and ignored.
func (s *AuthService) ParseSession(ctx context.Context, token string) (*ports.Session, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		return nil, domain.ErrInvalidToken
	}

	revoked, err := s.deps.Sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("jti", claims.ID).Msg("revocation check failed, accepting session")
	} else if revoked {
		return nil, domain.ErrInvalidToken
	}

	return &ports.Session{
		Token:     token,
		UserID:    userID,
		Email:     claims.Email,
		Role:      claims.Role,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *AuthService) issueSession(user *domain.User) (*ports.Session, error) {
	now := s.now()
	session := &ports.Session{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role(),
		JTI:       uuid.NewString(),
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}

	claims := sessionClaims{
		Email: session.Email,
		Role:  session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        session.JTI,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}
	session.Token = signed
	return session, nil
}

func (s *AuthService) confirmationMessage(email, token string) ports.Message {
	link := s.cfg.PublicBaseURL + "/confirm/" + token
	return ports.Message{
		To:      []string{email},
		Subject: confirmationSubject,
		HTML: fmt.Sprintf(`<p>Welcome to Organizational Odyssey!</p>`+
			`<p>Please confirm your account by following <a href="%s">this link</a>.</p>`, link),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
