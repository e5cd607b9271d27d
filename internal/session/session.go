// Package session manages authenticated sessions. Session rows live in
// redis with a TTL; bearers hold a signed token referencing the row. The
// external OAuth flow happens upstream: by the time SignIn is called the
// identity provider has already vouched for the subject.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marklist/marklist/internal/logger"
	redisstore "github.com/marklist/marklist/internal/store/redis"
)

// ErrNoSession is returned when a token references no live session.
var ErrNoSession = errors.New("no active session")

// Session is one authenticated session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// Change notifies observers of a sign-in or sign-out. UserID is the stable
// scalar downstream state must key on, never the session object itself.
type Change struct {
	UserID   string
	SignedIn bool
}

// Manager owns session persistence, token issuance and change
// notification. Construct exactly one per process.
type Manager struct {
	client *redis.Client
	tokens *tokenCodec
	ttl    time.Duration
	logger logger.Logger

	mu       sync.Mutex
	subs     map[int]func(Change)
	nextSub  int
	last     Change
	haveLast bool
}

// NewManager creates the session manager.
func NewManager(client *redis.Client, secret string, ttl time.Duration, log logger.Logger) *Manager {
	return &Manager{
		client: client,
		tokens: newTokenCodec([]byte(secret)),
		ttl:    ttl,
		logger: log,
		subs:   make(map[int]func(Change)),
	}
}

// SignIn creates a session for a subject the given provider authenticated
// and returns the bearer token for it.
func (m *Manager) SignIn(ctx context.Context, provider, userID string) (string, *Session, error) {
	sess := &Session{
		ID:        newSessionID(),
		UserID:    userID,
		Provider:  provider,
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := m.client.Set(ctx, redisstore.SessionKey(sess.ID), data, m.ttl).Err(); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	token, err := m.tokens.issue(sess, m.ttl)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	m.logger.Info("session created",
		logger.String("user_id", userID),
		logger.String("provider", provider))

	m.notify(Change{UserID: userID, SignedIn: true})
	return token, sess, nil
}

// Current resolves a bearer token to its live session. A bad token, an
// expired token, or a session row gone from redis all yield ErrNoSession:
// the caller only needs the unauthenticated/authenticated distinction.
func (m *Manager) Current(ctx context.Context, token string) (*Session, error) {
	claims, err := m.tokens.parse(token)
	if err != nil {
		return nil, ErrNoSession
	}

	data, err := m.client.Get(ctx, redisstore.SessionKey(claims.ID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &sess, nil
}

// SignOut deletes the token's session. Signing out an already-dead session
// is a no-op.
func (m *Manager) SignOut(ctx context.Context, token string) error {
	sess, err := m.Current(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		return err
	}

	if err := m.client.Del(ctx, redisstore.SessionKey(sess.ID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	m.logger.Info("session ended", logger.String("user_id", sess.UserID))

	m.notify(Change{UserID: sess.UserID, SignedIn: false})
	return nil
}

// OnChange registers a change callback and returns its unsubscribe func.
// Callbacks run synchronously on the goroutine performing the sign-in or
// sign-out.
func (m *Manager) OnChange(fn func(Change)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// notify fans a change out to subscribers. A change identical to the
// previous one (same user id, same state) is suppressed: a repeated
// sign-in for an already-active user must not retrigger downstream
// session-keyed effects.
func (m *Manager) notify(change Change) {
	m.mu.Lock()
	if m.haveLast && m.last == change {
		m.mu.Unlock()
		return
	}
	m.last = change
	m.haveLast = true
	subs := make([]func(Change), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
}

func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
