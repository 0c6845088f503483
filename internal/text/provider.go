// Package text supplies target lines for races.
//
// Providers may fail (network, missing files). WithFallback wraps any provider
// so a round can always start with the fixed Fallback text.
package text

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/strrl/typerace/pkg/models"
)

const (
	fallbackSource = "Random"
	fallbackBody   = "This is a random string to type"
)

// Provider produces a target line and its source label.
type Provider interface {
	Fetch(ctx context.Context) (models.Text, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) (models.Text, error)

// Fetch calls f.
func (f ProviderFunc) Fetch(ctx context.Context) (models.Text, error) { return f(ctx) }

// Fallback returns the always-available target line.
func Fallback() models.Text {
	return models.Text{Source: fallbackSource, Body: fallbackBody}
}

// StaticProvider always returns the fallback line.
type StaticProvider struct{}

// Fetch returns Fallback.
func (StaticProvider) Fetch(ctx context.Context) (models.Text, error) {
	return Fallback(), nil
}

type fallbackProvider struct {
	inner Provider
}

// WithFallback wraps p so that errors and empty results yield Fallback
// instead. The returned provider never fails.
func WithFallback(p Provider) Provider {
	if p == nil {
		return StaticProvider{}
	}
	return fallbackProvider{inner: p}
}

func (f fallbackProvider) Fetch(ctx context.Context) (models.Text, error) {
	t, err := f.inner.Fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("text provider failed, using fallback line")
		return Fallback(), nil
	}
	if strings.TrimSpace(t.Body) == "" {
		log.Warn().Str("source", t.Source).Msg("text provider returned empty line, using fallback")
		return Fallback(), nil
	}
	return t, nil
}

// Names of the built-in providers.
const (
	ProviderWikipedia = "wikipedia"
	ProviderCorpus    = "corpus"
	ProviderStatic    = "static"
)

// Options selects and configures a built-in provider.
type Options struct {
	Name      string
	Endpoint  string // Wikipedia REST base URL
	File      string // corpus file, embedded corpus when empty
	MaxLength int
}

// NewProvider builds the named provider wrapped with WithFallback.
func NewProvider(opts Options) (Provider, error) {
	maxLen := opts.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	var p Provider
	switch strings.ToLower(strings.TrimSpace(opts.Name)) {
	case ProviderWikipedia, "":
		p = NewWikipediaProvider(opts.Endpoint, maxLen)
	case ProviderCorpus:
		corpus, err := LoadCorpus(opts.File, maxLen)
		if err != nil {
			return nil, err
		}
		p = corpus
	case ProviderStatic:
		p = StaticProvider{}
	default:
		return nil, fmt.Errorf("unknown text provider %q", opts.Name)
	}
	return WithFallback(p), nil
}
