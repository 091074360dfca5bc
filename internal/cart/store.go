package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type cartKeyer interface {
	CartKey(sessionToken string) string
}

// Store persists cart state in Redis keyed by the caller's session token.
// Reads of missing keys return an empty cart rather than an error.
type Store struct {
	store sessionStore
	keyer cartKeyer
	ttl   time.Duration
}

// StoreParams groups the dependencies for NewStore.
type StoreParams struct {
	Client interface {
		sessionStore
		cartKeyer
	}
	TTL time.Duration
}

// NewStore builds a redis-backed cart store.
func NewStore(params StoreParams) (*Store, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "redis client is required")
	}
	if params.TTL <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart ttl must be positive")
	}
	return &Store{
		store: params.Client,
		keyer: params.Client,
		ttl:   params.TTL,
	}, nil
}

// Load returns the cart for the session token, or an empty cart when none exists.
func (s *Store) Load(ctx context.Context, sessionToken string) (State, error) {
	if strings.TrimSpace(sessionToken) == "" {
		return State{}, pkgerrors.New(pkgerrors.CodeValidation, "session token is required")
	}

	raw, err := s.store.Get(ctx, s.keyer.CartKey(sessionToken))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return State{}, nil
		}
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cart")
	}
	return state, nil
}

// Save writes the cart back with the configured TTL.
func (s *Store) Save(ctx context.Context, sessionToken string, state State) error {
	if strings.TrimSpace(sessionToken) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session token is required")
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.store.Set(ctx, s.keyer.CartKey(sessionToken), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

// Mutate loads the cart, applies the reducer, and saves the result.
func (s *Store) Mutate(ctx context.Context, sessionToken string, reduce func(State) State) (State, error) {
	state, err := s.Load(ctx, sessionToken)
	if err != nil {
		return State{}, err
	}
	next := reduce(state)
	if err := s.Save(ctx, sessionToken, next); err != nil {
		return State{}, err
	}
	return next, nil
}

// Delete removes the persisted cart entirely.
func (s *Store) Delete(ctx context.Context, sessionToken string) error {
	if strings.TrimSpace(sessionToken) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session token is required")
	}
	if err := s.store.Del(ctx, s.keyer.CartKey(sessionToken)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart")
	}
	return nil
}
