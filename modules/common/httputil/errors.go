package httputil

// ConfigError - required endpoint or credential missing; reported before any
// provider call is attempted
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// ProviderError - the downstream provider failed (transport or semantic);
// relayed as a 502 with bounded detail
type ProviderError struct {
	Message string
	Details string
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
