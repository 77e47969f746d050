package flightdata

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// envelope is the wire shape every provider operation responds with:
// exactly one of data/error is meaningful depending on success.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// decodeEnvelope normalizes one raw provider payload into v.
//
// Garbled output — empty payload, non-JSON, truncated JSON — collapses to
// ErrBackendUnavailable with the detail logged only. A well-formed envelope
// with success:false yields a ProviderError carrying the provider's own
// message, which some operations surface verbatim.
func decodeEnvelope(raw []byte, v any, logger zerolog.Logger) error {
	if len(raw) == 0 {
		logger.Error().Msg("provider returned empty payload")
		return ErrBackendUnavailable
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error().Err(err).Int("bytes", len(raw)).Msg("provider payload is not valid JSON")
		return ErrBackendUnavailable
	}

	if !env.Success {
		return &ProviderError{Message: env.Error}
	}

	if v == nil || len(env.Data) == 0 {
		return nil
	}

	if err := json.Unmarshal(env.Data, v); err != nil {
		logger.Error().Err(err).Msg("provider envelope data has unexpected shape")
		return ErrBackendUnavailable
	}

	return nil
}
