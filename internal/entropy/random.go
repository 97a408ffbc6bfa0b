// Package entropy provides the single seeded random source threaded through
// turn resolution and AI decisions. Every draw carries a label so a replay
// with the same seed can be compared draw by draw in the debug log.
//
// Seeds come from the command line, from random.org when an API key is
// configured, or from crypto/rand.
package entropy

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	mrand "math/rand"
	"net/http"
	"time"
)

// Source is a deterministic, labelled random number generator. It is not
// safe for concurrent use; the turn engine is single threaded.
type Source struct {
	seed  int64
	draws int
	rng   *mrand.Rand
}

// NewSource creates a source for the given seed.
func NewSource(seed int64) *Source {
	return &Source{seed: seed, rng: mrand.New(mrand.NewSource(seed))}
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() int64 { return s.seed }

// Draws returns how many values have been drawn so far.
func (s *Source) Draws() int { return s.draws }

// Intn returns a value in [0, n). n <= 0 returns 0 without consuming a draw.
func (s *Source) Intn(label string, n int) int {
	if n <= 0 {
		return 0
	}
	v := s.rng.Intn(n)
	s.draws++
	slog.Debug("random int", "label", label, "n", n, "value", v, "draw", s.draws)
	return v
}

// Float64 returns a value in [0, 1).
func (s *Source) Float64(label string) float64 {
	v := s.rng.Float64()
	s.draws++
	slog.Debug("random float", "label", label, "value", v, "draw", s.draws)
	return v
}

// Pick returns a uniformly chosen index into a list of length n, or -1 for
// an empty list.
func (s *Source) Pick(label string, n int) int {
	if n <= 0 {
		return -1
	}
	return s.Intn(label, n)
}

// Client fetches seeds from random.org.
type Client struct {
	apiKey string
	client *http.Client
}

// NewClient creates a random.org client. Returns nil if apiKey is empty.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled returns true if the client has a valid API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Seed asks random.org for a seed.
func (c *Client) Seed() (int64, error) {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateIntegers",
		"params": map[string]any{
			"apiKey": c.apiKey,
			"n":      2,
			"min":    0,
			"max":    1<<31 - 1,
		},
		"id": 1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("marshal: %w", err)
	}

	resp, err := c.client.Post("https://api.random.org/json-rpc/4/invoke", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}

	var result struct {
		Result struct {
			Random struct {
				Data []int64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}
	if result.Error != nil {
		return 0, fmt.Errorf("random.org: %s", result.Error.Message)
	}
	data := result.Result.Random.Data
	if len(data) < 2 {
		return 0, fmt.Errorf("random.org: short response")
	}
	return data[0]<<31 | data[1], nil
}

// NewSeed picks a seed for a new game: random.org when the client is
// enabled, crypto/rand otherwise or on failure.
func NewSeed(c *Client) int64 {
	if c.Enabled() {
		seed, err := c.Seed()
		if err == nil {
			return seed
		}
		slog.Warn("random.org seed failed, using crypto/rand", "error", err)
	}
	return cryptoSeed()
}

func cryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}
