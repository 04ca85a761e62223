package azuread

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Seconds is an integer that Azure AD sometimes sends as a JSON string
// ("3599") and sometimes as a number.
type Seconds int64

// UnmarshalJSON accepts both encodings; null and "" decode to zero.
func (s *Seconds) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "" || raw == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("azuread: %s is not a whole number of seconds: %w", string(b), err)
	}
	*s = Seconds(n)
	return nil
}

// TokenResponse is the v1 token endpoint response.
type TokenResponse struct {
	TokenType    string  `json:"token_type"`
	ExpiresIn    Seconds `json:"expires_in"`
	ExtExpiresIn Seconds `json:"ext_expires_in"`
	ExpiresOn    Seconds `json:"expires_on"` // unix
	NotBefore    Seconds `json:"not_before"` // unix
	Resource     string  `json:"resource"`
	AccessToken  string  `json:"access_token"`

	// ReceivedAt is when the response arrived, the base for ExpiresIn.
	ReceivedAt time.Time `json:"-"`
}

// Expiry returns when the access token stops being accepted. The absolute
// expires_on wins; otherwise expires_in counts from ReceivedAt. Zero if
// neither was sent.
func (t *TokenResponse) Expiry() time.Time {
	switch {
	case t.ExpiresOn > 0:
		return time.Unix(int64(t.ExpiresOn), 0)
	case t.ExpiresIn > 0 && !t.ReceivedAt.IsZero():
		return t.ReceivedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
	default:
		return time.Time{}
	}
}
