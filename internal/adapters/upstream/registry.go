package upstream

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// callbackPrefix starts every callback token; the rest is a dashless UUID so
// the token is a valid JavaScript identifier.
const callbackPrefix = "__pokerLeagueCb_"

type delivery struct {
	body json.RawMessage
	err  error
}

type pendingCall struct {
	once sync.Once
	ch   chan delivery
}

func (p *pendingCall) settle(d delivery) bool {
	settled := false
	p.once.Do(func() {
		p.ch <- d
		settled = true
	})
	return settled
}

// Registry hands out one-shot callback tokens. Each token is settled
// (resolved or rejected) at most once and is removed by its release func.
type Registry struct {
	mu      sync.Mutex
	pending map[string]*pendingCall
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[string]*pendingCall)}
}

// Acquire registers a fresh token. The returned channel receives exactly one
// delivery if the token is settled before release is called. release is
// idempotent and must run on every exit path.
func (r *Registry) Acquire() (token string, result <-chan delivery, release func()) {
	token = callbackPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	p := &pendingCall{ch: make(chan delivery, 1)}

	r.mu.Lock()
	r.pending[token] = p
	r.mu.Unlock()

	var once sync.Once
	release = func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.pending, token)
			r.mu.Unlock()
		})
	}
	return token, p.ch, release
}

// Resolve delivers body to token. It reports false for unknown, released or
// already settled tokens.
func (r *Registry) Resolve(token string, body json.RawMessage) bool {
	return r.settle(token, delivery{body: body})
}

// Reject delivers err to token. It reports false for unknown, released or
// already settled tokens.
func (r *Registry) Reject(token string, err error) bool {
	return r.settle(token, delivery{err: err})
}

func (r *Registry) settle(token string, d delivery) bool {
	r.mu.Lock()
	p, ok := r.pending[token]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return p.settle(d)
}

// Pending returns the number of registered tokens.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
