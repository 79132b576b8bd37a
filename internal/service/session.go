package service

import (
	"context"
	"sync"
	"time"

	"storefront/internal/shop"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// SubscriberFactory builds an extra shop subscriber for a session
type SubscriberFactory func(sessionID string) shop.Subscriber

// toucher is implemented by stores whose keys expire
type toucher interface {
	Touch(ctx context.Context, keys ...string) error
}

// DefaultHydrateTimeout bounds the one-time load of a session's state
const DefaultHydrateTimeout = 5 * time.Second

type session struct {
	shop     *shop.Shop
	src      shop.Source
	hydrate  sync.Once
	lastSeen time.Time
}

// SessionRegistry owns one Shop per browser session. A session's shop is
// created, wired to the store and hydrated the first time it is requested.
type SessionRegistry struct {
	store          shop.Store
	cartKey        string
	wishlistKey    string
	factories      []SubscriberFactory
	hydrateTimeout time.Duration
	clock          func() time.Time
	logger         *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionRegistry creates a registry persisting through store. A nil
// store keeps every session in memory only.
func NewSessionRegistry(store shop.Store, cartKey, wishlistKey string, factories ...SubscriberFactory) *SessionRegistry {
	return &SessionRegistry{
		store:          store,
		cartKey:        cartKey,
		wishlistKey:    wishlistKey,
		factories:      factories,
		hydrateTimeout: DefaultHydrateTimeout,
		clock:          time.Now,
		logger:         util.GetLogger(),
		sessions:       make(map[string]*session),
	}
}

// Get returns the session's shop, creating and hydrating it when new.
// Store I/O happens outside the registry lock; concurrent callers for the
// same new session wait for its hydration to finish.
func (r *SessionRegistry) Get(ctx context.Context, sessionID string) *shop.Shop {
	ctx, span := util.StartSpan(ctx, "SessionRegistry.Get")
	defer span.End()

	s := r.entry(sessionID)
	s.hydrate.Do(func() {
		// Detached from the request: a cancelled load would leave the
		// session Ready and empty.
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.hydrateTimeout)
		defer cancel()
		r.open(hctx, sessionID, s)
	})

	return s.shop
}

// entry returns the session entry, inserting an unhydrated one when new
func (r *SessionRegistry) entry(sessionID string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		s.lastSeen = r.clock()
		return s
	}

	s := &session{shop: shop.New(), lastSeen: r.clock()}
	if r.store != nil {
		p := shop.NewPersistence(r.store, r.key(sessionID, r.cartKey), r.key(sessionID, r.wishlistKey))
		s.shop.Subscribe(p)
		s.src = p
	}
	for _, factory := range r.factories {
		s.shop.Subscribe(factory(sessionID))
	}

	r.sessions[sessionID] = s
	util.ActiveSessions.Set(float64(len(r.sessions)))
	return s
}

func (r *SessionRegistry) open(ctx context.Context, sessionID string, s *session) {
	// Reads alone must keep a returning session's state alive
	if t, ok := r.store.(toucher); ok {
		if err := t.Touch(ctx, r.key(sessionID, r.cartKey), r.key(sessionID, r.wishlistKey)); err != nil {
			r.logger.Warn("Failed to refresh session TTL",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
	}

	s.shop.Hydrate(ctx, s.src)
	r.logger.Debug("Session opened", zap.String("session_id", sessionID))
}

func (r *SessionRegistry) key(sessionID, name string) string {
	return sessionID + ":" + name
}

// Len returns the number of live sessions
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle drops sessions not seen for idle. Their persisted state stays in
// the store and is hydrated again if the session comes back.
func (r *SessionRegistry) EvictIdle(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.clock().Add(-idle)
	var evicted int
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}

	util.ActiveSessions.Set(float64(len(r.sessions)))
	return evicted
}

// RunEviction calls EvictIdle every interval until ctx is done
func (r *SessionRegistry) RunEviction(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(idle); n > 0 {
				r.logger.Info("Evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}
