// Package provider defines the transport capability used to reach the
// flight-data provider. The provider exposes four logical operations that can
// be realized either as a local script invocation or as a remote HTTP call;
// both realizations accept the same named parameters and emit the same
// JSON-shaped payload.
package provider

import (
	"context"
	"net/url"
	"os"
	"time"
)

// Operation identifies one logical provider call.
type Operation string

// Provider operations.
const (
	OpLivePositions  Operation = "live_positions"
	OpLiveDepartures Operation = "live_departures"
	OpFlightDetails  Operation = "flight_details"
	OpSearchFlights  Operation = "search_flights"
)

// opSpec describes how an operation is realized by each transport variant.
type opSpec struct {
	// remotePath is the URL path of the remote realization.
	remotePath string

	// script is the file name of the local realization.
	script string

	// args is the positional order of the operation's parameters. The local
	// provider scripts take positional arguments, so the order is fixed.
	args []string
}

var opSpecs = map[Operation]opSpec{
	OpLivePositions: {
		remotePath: "/api/flight_service",
		script:     "flight_service.py",
		args:       []string{"min_lat", "max_lat", "min_lon", "max_lon", "limit"},
	},
	OpLiveDepartures: {
		remotePath: "/api/live_departures",
		script:     "live_departures.py",
		args:       []string{"airport"},
	},
	OpFlightDetails: {
		remotePath: "/api/flight_details",
		script:     "flight_details.py",
		args:       []string{"id", "airline_icao", "aircraft"},
	},
	OpSearchFlights: {
		remotePath: "/api/search_flights",
		script:     "search_flights.py",
		args:       []string{"origin", "dest", "date"},
	},
}

// Valid reports whether the operation is a known provider call.
func (op Operation) Valid() bool {
	_, ok := opSpecs[op]
	return ok
}

// RemotePath returns the URL path of the operation's remote realization.
func (op Operation) RemotePath() string {
	return opSpecs[op].remotePath
}

// Script returns the file name of the operation's local realization.
func (op Operation) Script() string {
	return opSpecs[op].script
}

// ArgOrder returns the positional parameter order of the operation.
func (op Operation) ArgOrder() []string {
	return opSpecs[op].args
}

// Params holds the named parameters of one provider call. Parameters the
// caller did not set are treated as empty.
type Params map[string]string

// Get returns the value for key, or "" when unset.
func (p Params) Get(key string) string {
	if p == nil {
		return ""
	}
	return p[key]
}

// Argv serializes the parameters as positional arguments in the operation's
// fixed order. Trailing unset parameters are trimmed; interior gaps are kept
// as empty strings so later positions stay aligned.
func (p Params) Argv(op Operation) []string {
	order := op.ArgOrder()
	args := make([]string, len(order))
	last := -1
	for i, key := range order {
		args[i] = p.Get(key)
		if args[i] != "" {
			last = i
		}
	}
	return args[:last+1]
}

// Query serializes the parameters as a URL query string in the operation's
// fixed order, skipping unset parameters.
func (p Params) Query(op Operation) string {
	values := url.Values{}
	for _, key := range op.ArgOrder() {
		if v := p.Get(key); v != "" {
			values.Set(key, v)
		}
	}
	return values.Encode()
}

// Transport is the capability of reaching the provider. Implementations must
// be safe for concurrent use; each Invoke is independent and stateless.
type Transport interface {
	// Invoke performs one provider operation and returns its raw payload.
	Invoke(ctx context.Context, op Operation, params Params) ([]byte, error)

	// Name identifies the transport variant for logging and status reporting.
	Name() string
}

// Config selects and parameterizes the transport variant. The choice is made
// once at process startup; request handling never branches on deployment
// environment.
type Config struct {
	// Mode is "local" or "remote".
	Mode string

	// BaseURL is the remote provider base URL (remote mode).
	BaseURL string

	// Interpreter is the program used to run provider scripts (local mode).
	Interpreter string

	// ScriptDir is the directory holding provider scripts (local mode).
	ScriptDir string

	// Timeout bounds each provider call. A call that exceeds it is reported
	// as a backend failure rather than blocking the request forever.
	Timeout time.Duration
}

// DefaultTimeout bounds provider calls when no override is configured.
const DefaultTimeout = 15 * time.Second

// ConfigFromEnv builds the transport configuration from the environment.
// PROVIDER_MODE forces a variant; otherwise a set PROVIDER_BASE_URL selects
// remote and local is the fallback.
func ConfigFromEnv() Config {
	cfg := Config{
		Mode:        os.Getenv("PROVIDER_MODE"),
		BaseURL:     os.Getenv("PROVIDER_BASE_URL"),
		Interpreter: os.Getenv("PROVIDER_INTERPRETER"),
		ScriptDir:   os.Getenv("PROVIDER_SCRIPT_DIR"),
		Timeout:     DefaultTimeout,
	}

	if cfg.Mode == "" {
		if cfg.BaseURL != "" {
			cfg.Mode = "remote"
		} else {
			cfg.Mode = "local"
		}
	}
	if cfg.Interpreter == "" {
		cfg.Interpreter = "python3"
	}
	if cfg.ScriptDir == "" {
		cfg.ScriptDir = "api"
	}
	if v := os.Getenv("PROVIDER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}
