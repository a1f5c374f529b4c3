// Package auth owns user identities: password sign-up and sign-in, profile
// lookups, access tokens and the current-user-changed stream.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/biztrack/internal/docstore"
)

const MinPasswordLength = 8

type User struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	PhotoURL    string
	CreatedAt   time.Time
}

// Listener is called with the user after sign-in or a profile change, and
// with nil after sign-out.
type Listener func(userID uuid.UUID, u *User)

type Service struct {
	docs     docstore.Store
	validate *validator.Validate
	cost     int
	now      func() time.Time

	signUpMu sync.Mutex

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
	attempts  map[string]*attempt
	pruned    time.Time
	limit     rate.Limit
	burst     int
}

type attempt struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Option func(*Service)

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSignInLimit caps sign-in attempts per email address.
func WithSignInLimit(limit rate.Limit, burst int) Option {
	return func(s *Service) {
		s.limit = limit
		s.burst = burst
	}
}

func NewService(docs docstore.Store, opts ...Option) *Service {
	s := &Service{
		docs:      docs,
		validate:  validator.New(),
		cost:      bcrypt.DefaultCost,
		now:       time.Now,
		listeners: make(map[int]Listener),
		attempts:  make(map[string]*attempt),
		limit:     rate.Every(time.Minute),
		burst:     5,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Subscribe registers l and returns a function that removes it.
func (s *Service) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.listeners, id)
	}
}

func (s *Service) publish(userID uuid.UUID, u *User) {
	s.mu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.Unlock()

	for _, l := range ls {
		l(userID, u)
	}
}

type SignUpParams struct {
	Email       string
	Password    string
	DisplayName string
}

func (s *Service) SignUp(ctx context.Context, p SignUpParams) (*User, error) {
	email := normalizeEmail(p.Email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}

	if len(p.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	name := strings.TrimSpace(p.DisplayName)
	if name == "" {
		return nil, ErrMissingName
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	s.signUpMu.Lock()
	defer s.signUpMu.Unlock()

	if _, err := s.docs.Get(ctx, docstore.EmailsCollection, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	u := &User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: name,
		CreatedAt:   s.now(),
	}

	b := docstore.NewBatch().
		Set(docstore.UsersCollection, u.ID.String(), map[string]any{
			"email":        u.Email,
			"displayName":  u.DisplayName,
			"photoURL":     u.PhotoURL,
			"passwordHash": string(hash),
			"createdAt":    u.CreatedAt,
		}).
		Set(docstore.EmailsCollection, email, map[string]any{"userId": u.ID.String()})

	if err := s.docs.Commit(ctx, b); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	slog.Info("user signed up", "user_id", u.ID)
	s.publish(u.ID, u)

	return u, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}

	if !s.allowSignIn(email) {
		return nil, ErrTooManyRequests
	}

	idx, err := s.docs.Get(ctx, docstore.EmailsCollection, email)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("looking up email: %w", err)
	}

	id, err := uuid.Parse(docstore.String(idx.Data, "userId"))
	if err != nil {
		return nil, fmt.Errorf("parsing user id: %w", err)
	}

	doc, err := s.docs.Get(ctx, docstore.UsersCollection, id.String())
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	hash := docstore.String(doc.Data, "passwordHash")
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	u := userFromDocument(id, doc)
	s.publish(u.ID, u)

	return u, nil
}

// SignOut tells listeners the user is gone.
func (s *Service) SignOut(_ context.Context, userID uuid.UUID) {
	s.publish(userID, nil)
}

func (s *Service) User(ctx context.Context, id uuid.UUID) (*User, error) {
	doc, err := s.docs.Get(ctx, docstore.UsersCollection, id.String())
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return userFromDocument(id, doc), nil
}

func (s *Service) UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingName
	}

	if err := s.docs.Merge(ctx, docstore.UsersCollection, id.String(), map[string]any{"displayName": name}); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("updating display name: %w", err)
	}

	u, err := s.User(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(u.ID, u)

	return u, nil
}

func (s *Service) allowSignIn(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	ttl := s.refillTime()

	// An entry idle for a full refill holds a full bucket and can be rebuilt.
	if now.Sub(s.pruned) > ttl {
		for key, a := range s.attempts {
			if now.Sub(a.lastSeen) > ttl {
				delete(s.attempts, key)
			}
		}

		s.pruned = now
	}

	a, ok := s.attempts[email]
	if !ok {
		a = &attempt{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.attempts[email] = a
	}

	a.lastSeen = now

	return a.limiter.AllowN(now, 1)
}

func (s *Service) refillTime() time.Duration {
	if s.limit <= 0 || s.limit == rate.Inf {
		return time.Hour
	}

	return time.Duration(float64(s.burst) / float64(s.limit) * float64(time.Second))
}

func userFromDocument(id uuid.UUID, doc docstore.Document) *User {
	createdAt, ok, err := docstore.Time(doc.Data, "createdAt")
	if err != nil || !ok {
		createdAt = doc.CreatedAt
	}

	return &User{
		ID:          id,
		Email:       docstore.String(doc.Data, "email"),
		DisplayName: docstore.String(doc.Data, "displayName"),
		PhotoURL:    docstore.String(doc.Data, "photoURL"),
		CreatedAt:   createdAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
