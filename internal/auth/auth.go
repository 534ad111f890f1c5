// Package auth registers users, checks credentials and tracks the persisted
// current-session pointer used by local hosts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"ledger_system/internal/domain"
	"ledger_system/internal/store"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service manages users and the current session
type Service struct {
	mu    sync.Mutex
	store store.Store
	log   logrus.FieldLogger
	cost  int
}

// NewService returns a service over s. log may be nil.
func NewService(s store.Store, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: s, log: log, cost: bcrypt.DefaultCost}
}

// RegisterInput holds the registration form
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func (in RegisterInput) validate() error {
	var problems []string
	if in.Name == "" {
		problems = append(problems, "name is required")
	}
	if in.Email == "" {
		problems = append(problems, "email is required")
	} else if !emailPattern.MatchString(in.Email) {
		problems = append(problems, "please enter a valid email")
	}
	if len(in.Password) < MinPasswordLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(problems) > 0 {
		return domain.Invalid("%s", strings.Join(problems, "; "))
	}
	return nil
}

func (s *Service) loadUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if _, err := s.store.Load(ctx, store.KeyUsers, &users); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

// Register creates a user. Emails are unique and compared exactly; a
// duplicate fails with ErrDuplicateEmail and writes nothing.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := in.validate(); err != nil {
		return domain.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.loadUsers(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.Email == in.Email {
			s.log.WithField("email", in.Email).Warn("Registration rejected: duplicate email")
			return domain.User{}, domain.ErrDuplicateEmail
		}
	}
	user := domain.User{
		ID:        domain.NewID(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  string(hash),
		CreatedAt: time.Now().UTC().Round(0),
	}
	users = append(users, user)
	if err := s.store.Save(ctx, store.Slot{Key: store.KeyUsers, Value: users}); err != nil {
		return domain.User{}, fmt.Errorf("save users: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("User registered")
	return user, nil
}

// Authenticate checks credentials without touching the session
func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return domain.User{}, err
	}
	email = strings.TrimSpace(email)
	for _, u := range users {
		if u.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
			break
		}
		return u, nil
	}
	s.log.WithField("email", email).Warn("Login failed")
	return domain.User{}, domain.ErrInvalidCredentials
}

// Login authenticates and records the user as the current session
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.store.Save(ctx, store.Slot{Key: store.KeyCurrentUser, Value: u.Actor()}); err != nil {
		return domain.User{}, fmt.Errorf("save session: %w", err)
	}
	s.log.WithField("user_id", u.ID).Info("User logged in")
	return u, nil
}

// Logout clears the current session
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Save(ctx, store.Slot{Key: store.KeyCurrentUser, Value: nil}); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// CurrentUser returns the session's acting user, or nil when logged out
func (s *Service) CurrentUser(ctx context.Context) (*domain.Actor, error) {
	var actor *domain.Actor
	if _, err := s.store.Load(ctx, store.KeyCurrentUser, &actor); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return actor, nil
}

// UserByID resolves a token subject
func (s *Service) UserByID(ctx context.Context, id string) (domain.User, error) {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.NotFound("user not found")
}

// IsAuthError reports whether err means the caller has no valid identity
func IsAuthError(err error) bool {
	return errors.Is(err, domain.ErrNotAuthenticated) || errors.Is(err, domain.ErrInvalidCredentials)
}
