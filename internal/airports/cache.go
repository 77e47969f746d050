// Package airports provides the static airport reference dataset and
// substring search over it.
package airports

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultDatasetPath is the airport dataset location relative to the
// working directory.
const DefaultDatasetPath = "data/airports.json"

// MaxResults caps the number of airports returned by a single search.
const MaxResults = 10

// MinQueryLength is the shortest query that triggers a search. Anything
// shorter returns no results without loading the dataset.
const MinQueryLength = 2

// Airport is one entry of the reference dataset. The dataset is loaded once
// per process and never mutated afterwards.
type Airport struct {
	IATA    string `json:"iata"`
	ICAO    string `json:"icao"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// CacheConfig holds configuration for the airport cache.
type CacheConfig struct {
	// DatasetPath is the JSON file to load. Defaults to DefaultDatasetPath.
	DatasetPath string

	// Logger for load diagnostics.
	Logger zerolog.Logger
}

// Cache lazily loads the airport dataset on first search and serves
// case-insensitive substring lookups over it.
type Cache struct {
	path   string
	logger zerolog.Logger

	group singleflight.Group

	mu       sync.RWMutex
	loaded   bool
	airports []Airport
}

// NewCache creates a new airport cache. The dataset is not read until the
// first qualifying search.
func NewCache(cfg CacheConfig) *Cache {
	path := cfg.DatasetPath
	if path == "" {
		path = DefaultDatasetPath
	}

	return &Cache{
		path:   path,
		logger: cfg.Logger,
	}
}

// Search returns at most MaxResults airports whose name, IATA, ICAO, city or
// country contains the query, case-insensitively. Queries shorter than
// MinQueryLength return nil without touching the dataset. A dataset that
// cannot be loaded yields an empty cache; search stays available and simply
// finds nothing.
func (c *Cache) Search(query string) []Airport {
	query = strings.ToLower(strings.TrimSpace(query))
	if len(query) < MinQueryLength {
		return nil
	}

	airports := c.load()

	var results []Airport
	for _, a := range airports {
		if matches(&a, query) {
			results = append(results, a)
			if len(results) >= MaxResults {
				break
			}
		}
	}
	return results
}

// Loaded reports whether the dataset load has happened (successfully or not).
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Size returns the number of airports currently held.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.airports)
}

// load returns the dataset, reading it from disk exactly once. Concurrent
// first searches share a single read via singleflight.
func (c *Cache) load() []Airport {
	c.mu.RLock()
	if c.loaded {
		airports := c.airports
		c.mu.RUnlock()
		return airports
	}
	c.mu.RUnlock()

	v, _, _ := c.group.Do("load", func() (interface{}, error) {
		c.mu.RLock()
		if c.loaded {
			airports := c.airports
			c.mu.RUnlock()
			return airports, nil
		}
		c.mu.RUnlock()

		airports := c.read()

		c.mu.Lock()
		c.airports = airports
		c.loaded = true
		c.mu.Unlock()

		return airports, nil
	})

	airports, _ := v.([]Airport)
	return airports
}

// read parses the dataset file. Failures degrade to an empty dataset; the
// gateway keeps serving every other operation.
func (c *Cache) read() []Airport {
	data, err := os.ReadFile(c.path)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", c.path).Msg("failed to read airport dataset")
		return []Airport{}
	}

	var airports []Airport
	if err := json.Unmarshal(data, &airports); err != nil {
		c.logger.Warn().Err(err).Str("path", c.path).Msg("failed to parse airport dataset")
		return []Airport{}
	}

	c.logger.Info().Int("airports", len(airports)).Str("path", c.path).Msg("airport dataset loaded")
	return airports
}

func matches(a *Airport, query string) bool {
	return strings.Contains(strings.ToLower(a.Name), query) ||
		strings.Contains(strings.ToLower(a.IATA), query) ||
		strings.Contains(strings.ToLower(a.ICAO), query) ||
		strings.Contains(strings.ToLower(a.City), query) ||
		strings.Contains(strings.ToLower(a.Country), query)
}
