// Package credential holds the single model API key for the process.
package credential

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"compify/api/internal/store"
)

// Name is the row under which the key is persisted.
const Name = "gemini_api_key"

// Repo is the persistence the provider needs.
type Repo interface {
	Get(ctx context.Context, name string) (string, error)
	Put(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
}

// Provider reads the key once at startup and serves it from memory afterwards.
// Set and Clear persist first and only then swap the in-memory value.
type Provider struct {
	repo Repo
	key  atomic.Pointer[string]
	log  *zap.Logger
}

// Load reads the persisted key. When nothing is stored and seed is non-empty,
// seed is persisted and used.
func Load(ctx context.Context, repo Repo, seed string, log *zap.Logger) (*Provider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Provider{repo: repo, log: log}
	empty := ""
	p.key.Store(&empty)

	v, err := repo.Get(ctx, Name)
	switch {
	case err == nil:
		p.key.Store(&v)
		log.Info("credential loaded", zap.Bool("has_key", v != ""))
		return p, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	if seed = strings.TrimSpace(seed); seed != "" {
		if err := p.Set(ctx, seed); err != nil {
			return nil, err
		}
		log.Info("credential seeded from environment")
		return p, nil
	}
	log.Info("credential loaded", zap.Bool("has_key", false))
	return p, nil
}

func (p *Provider) APIKey() string { return *p.key.Load() }

func (p *Provider) Configured() bool { return p.APIKey() != "" }

// Set persists key and makes it visible to the next gateway call.
func (p *Provider) Set(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return p.Clear(ctx)
	}
	if err := p.repo.Put(ctx, Name, key); err != nil {
		return err
	}
	p.key.Store(&key)
	p.log.Info("credential updated")
	return nil
}

func (p *Provider) Clear(ctx context.Context) error {
	if err := p.repo.Delete(ctx, Name); err != nil {
		return err
	}
	empty := ""
	p.key.Store(&empty)
	p.log.Info("credential cleared")
	return nil
}

// Mask shows only the last four characters of a key.
func Mask(key string) string {
	if key == "" {
		return "(not set)"
	}
	r := []rune(key)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}
