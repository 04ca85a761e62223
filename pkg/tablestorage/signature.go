package tablestorage

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/tgedr/connectors/pkg/connector"
	"github.com/tgedr/connectors/pkg/cryptox"
)

// dateLayout matches the RFC1123 GMT form the service expects in x-ms-date,
// with the day of month left unpadded.
const dateLayout = "Mon, 2 Jan 2006 15:04:05 GMT"

// FormatDate renders t for the x-ms-date header.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// CanonicalResource returns the SharedKeyLite canonicalized resource for a
// table, with an optional entity filter appended verbatim.
func CanonicalResource(account, table, filter string) string {
	return "/" + account + "/" + table + filter
}

// Sign computes the SharedKeyLite signature: Base64(HMAC-SHA256(key,
// date + "\n" + resource)). It is a pure function of its inputs.
func Sign(date, resource string, key []byte) string {
	return cryptox.HMACSHA256Base64(key, []byte(date+"\n"+resource))
}

// AuthorizationHeader formats the Authorization header value.
func AuthorizationHeader(account, signature string) string {
	return fmt.Sprintf("SharedKeyLite %s:%s", account, signature)
}

// Signer signs requests for one storage account with its decoded shared key.
type Signer struct {
	account string
	key     []byte
}

// NewSigner decodes the Base64 account key as handed out by the portal.
func NewSigner(account, base64Key string) (*Signer, error) {
	if err := connector.Required("storage account", account); err != nil {
		return nil, err
	}
	if err := connector.Required("storage account key", base64Key); err != nil {
		return nil, err
	}

	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, &connector.ValidationError{Field: "storage account key", Reason: "not valid base64"}
	}

	return &Signer{account: account, key: key}, nil
}

// Authorization returns the Authorization header for a request dated date
// against resource.
func (s *Signer) Authorization(date, resource string) string {
	return AuthorizationHeader(s.account, Sign(date, resource, s.key))
}
