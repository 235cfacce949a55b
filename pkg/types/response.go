package types

// SuccessEnvelope is embedded by every success payload so the wire shape
// always starts with {"success":true, ...}.
type SuccessEnvelope struct {
	Success bool `json:"success"`
}

// OK returns the envelope for a successful response.
func OK() SuccessEnvelope {
	return SuccessEnvelope{Success: true}
}

type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
