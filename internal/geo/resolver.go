// Package geo resolves free-form place strings ("Paris, Île-de-France,
// France", "Singapore") to ISO 3166-1 alpha-2 country codes through a
// fixed sequence of tiers: extraction, cache, external exact lookup,
// external fuzzy lookup, bundled static table.
package geo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/cache"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/restcountries"
)

// ErrUnresolvable is returned when every tier has been exhausted. Callers
// must treat it as skip-this-destination, not as a fatal error.
var ErrUnresolvable = errors.New("unresolvable location")

// ResolvedVia records which tier produced a country code.
type ResolvedVia string

const (
	ViaDirect      ResolvedVia = "direct"
	ViaCache       ResolvedVia = "cache-hit"
	ViaExternal    ResolvedVia = "external-lookup"
	ViaStaticTable ResolvedVia = "static-table"
)

// Resolver maps place strings to country codes. The in-memory cache is
// process-scoped and purely an optimization: resolution must succeed with
// a cold cache, which is why the static table is always the final tier.
// Safe for concurrent use.
type Resolver struct {
	client  restcountries.Client
	overlay cache.Cache // optional cross-run cache, may be nil

	mu      sync.RWMutex
	entries map[string]string
}

// NewResolver creates a Resolver. overlay may be nil to disable the
// cross-run cache layer.
func NewResolver(client restcountries.Client, overlay cache.Cache) *Resolver {
	return &Resolver{
		client:  client,
		overlay: overlay,
		entries: make(map[string]string),
	}
}

// Resolve maps a place string to a country code, reporting which tier
// answered. Fails with ErrUnresolvable only after all tiers are exhausted.
func (r *Resolver) Resolve(ctx context.Context, place string) (string, ResolvedVia, error) {
	trimmed := strings.TrimSpace(place)
	if trimmed == "" {
		return "", "", fmt.Errorf("%w: empty input", ErrUnresolvable)
	}

	// Already a two-letter code. Colloquial two-letter names that are
	// not ISO codes ("UK") resolve through the static table first.
	if isAlpha2(trimmed) {
		if code, ok := staticCountryCodes[strings.ToLower(trimmed)]; ok {
			return code, ViaStaticTable, nil
		}
		return strings.ToUpper(trimmed), ViaDirect, nil
	}

	candidate := ExtractCountry(trimmed)
	key := strings.ToLower(candidate)

	if code, ok := r.lookupMemory(key); ok {
		return code, ViaCache, nil
	}

	if code, ok := r.lookupOverlay(ctx, key); ok {
		r.storeMemory(key, code)
		return code, ViaCache, nil
	}

	if code, err := r.client.LookupExact(ctx, candidate); err == nil {
		r.store(ctx, key, code)
		return code, ViaExternal, nil
	}

	code, err := r.client.LookupFuzzy(ctx, candidate)
	if err == nil {
		r.store(ctx, key, code)
		return code, ViaExternal, nil
	}
	if !errors.Is(err, restcountries.ErrNotFound) {
		slog.Warn("country dataset lookup failed, falling back to static table",
			"candidate", candidate, "error", err)
	}

	if code, ok := staticCountryCodes[key]; ok {
		r.storeMemory(key, code)
		return code, ViaStaticTable, nil
	}

	return "", "", fmt.Errorf("%w: %q", ErrUnresolvable, place)
}

// ExtractCountry takes the last non-empty comma-separated segment of a
// place string. Destination strings arrive as "City, Region, Country";
// the country is always last.
func ExtractCountry(place string) string {
	parts := strings.Split(place, ",")
	for i := len(parts) - 1; i >= 0; i-- {
		if p := strings.TrimSpace(parts[i]); p != "" {
			return p
		}
	}
	return strings.TrimSpace(place)
}

func (r *Resolver) lookupMemory(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.entries[key]
	return code, ok
}

func (r *Resolver) lookupOverlay(ctx context.Context, key string) (string, bool) {
	if r.overlay == nil {
		return "", false
	}
	code, found, err := r.overlay.GetCountryCode(ctx, key)
	if err != nil || !found {
		return "", false
	}
	return code, true
}

func (r *Resolver) storeMemory(key, code string) {
	r.mu.Lock()
	r.entries[key] = code
	r.mu.Unlock()
}

// store writes to both cache layers. A lost write on a race is harmless:
// the entry is idempotently re-derivable.
func (r *Resolver) store(ctx context.Context, key, code string) {
	r.storeMemory(key, code)
	if r.overlay != nil {
		_ = r.overlay.SetCountryCode(ctx, key, code)
	}
}

func isAlpha2(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, c := range s {
		if !unicode.IsLetter(c) {
			return false
		}
	}
	return true
}
