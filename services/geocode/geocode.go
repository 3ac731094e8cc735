package geocode

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Match outcomes for a submitted address.
const (
	MatchExact   = "exact"
	MatchPartial = "partial"
	MatchNone    = "none"
)

var ErrUnresolvable = errors.New("address could not be resolved")

// Address is the free-form venue address submitted with a park.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
}

// Result is the canonical form the geocoding service settled on, plus
// how closely it matched the submission.
type Result struct {
	Match     string  `json:"match"`
	Canonical Address `json:"canonical"`
}

/*
 * Client talks to the external geocoding collaborator. It only exists
 * when GEOCODER_API_KEY is configured; without a credential, park
 * submissions skip normalization and rely on the local format checks.
 * Responses are cached in Redis for a day when a client is available.
 */
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	cache   *redis.Client
}

// NewFromEnv builds a Client from GEOCODER_API_KEY and GEOCODER_URL.
// Returns nil when no API key is configured.
func NewFromEnv(cache *redis.Client) *Client {
	apiKey := os.Getenv("GEOCODER_API_KEY")
	if apiKey == "" {
		return nil
	}
	baseURL := os.Getenv("GEOCODER_URL")
	if baseURL == "" {
		baseURL = "https://geocoding.geo.census.gov/geocoder/locations/address"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
	}
}

// Key format: "geocode:addr:{sha1 of the normalized submission}"
func cacheKey(addr Address) string {
	joined := strings.ToLower(strings.Join([]string{
		addr.Street, addr.City, addr.State, addr.Zipcode,
	}, "|"))
	sum := sha1.Sum([]byte(joined))
	return "geocode:addr:" + hex.EncodeToString(sum[:])
}

// Normalize resolves the submitted address against the geocoding
// service. An exact match means the submission already is the canonical
// form; a partial match carries the canonical form for the submitter to
// confirm; ErrUnresolvable means the service found nothing.
func (c *Client) Normalize(ctx context.Context, addr Address) (*Result, error) {
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey(addr)).Bytes(); err == nil {
			var result Result
			if err := json.Unmarshal(cached, &result); err == nil {
				return &result, nil
			}
		}
	}

	result, err := c.lookup(ctx, addr)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			c.cache.Set(ctx, cacheKey(addr), data, 24*time.Hour)
		}
	}

	return result, nil
}

func (c *Client) lookup(ctx context.Context, addr Address) (*Result, error) {
	query := url.Values{
		"street": {addr.Street},
		"city":   {addr.City},
		"state":  {addr.State},
		"zip":    {addr.Zipcode},
		"key":    {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoder unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	// The service answers with the list of candidate addresses for the
	// submission; the first candidate is its canonical form.
	var payload struct {
		Matches []Address `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding geocoder response: %w", err)
	}

	if len(payload.Matches) == 0 {
		return nil, ErrUnresolvable
	}

	canonical := payload.Matches[0]
	result := &Result{Match: MatchPartial, Canonical: canonical}
	if sameAddress(addr, canonical) {
		result.Match = MatchExact
	}
	return result, nil
}

func sameAddress(a, b Address) bool {
	eq := func(x, y string) bool {
		return strings.EqualFold(strings.TrimSpace(x), strings.TrimSpace(y))
	}
	return eq(a.Street, b.Street) && eq(a.City, b.City) &&
		eq(a.State, b.State) && eq(a.Zipcode, b.Zipcode)
}
