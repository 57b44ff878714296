package config

import "sync/atomic"

// Provider hands out the current configuration snapshot. Readers call Get on
// every request; Update swaps the whole snapshot atomically, so a reload
// never exposes a half-applied configuration.
type Provider struct {
	current atomic.Pointer[Config]
}

func NewProvider(cfg *Config) *Provider {
	p := &Provider{}
	p.current.Store(cfg)
	return p
}

// Get returns the current configuration. The returned value must be treated
// as read-only.
func (p *Provider) Get() *Config {
	return p.current.Load()
}

// Update replaces the current configuration.
func (p *Provider) Update(cfg *Config) {
	p.current.Store(cfg)
}
