// Package types holds the wire shapes shared by the relay, the client and
// the CLI.
package types

// UnixMilli is a timestamp in milliseconds since the Unix epoch, the
// resolution the limiter and the audit trail both work in.
type UnixMilli int64

// ContactRequest is the inbound submission body. Honeypot must be empty for
// human traffic; Token is the optional bot-verification token.
type ContactRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Company      string `json:"company,omitempty"`
	Requirements string `json:"requirements"`
	Honeypot     string `json:"honeypot,omitempty"`
	Token        string `json:"turnstileToken,omitempty"`
}

// PingResponse reports configuration presence without leaking secret values.
type PingResponse struct {
	OK                    bool   `json:"ok"`
	Time                  string `json:"time"`
	HasWeb3FormsAccessKey bool   `json:"has_web3forms_access_key"`
	HasTurnstileSecretKey bool   `json:"has_turnstile_secret_key"`
	Host                  string `json:"host"`
}
