// Package oauth1 builds OAuth 1.0a HMAC-SHA1 Authorization headers.
package oauth1

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	signatureMethod = "HMAC-SHA1"
	version         = "1.0"
)

// Credentials is the four-part OAuth 1.0a user-context key set.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Signer produces Authorization headers for a fixed credential set.
type Signer struct {
	creds Credentials
	now   func() time.Time
	nonce func() string
}

// NewSigner creates a signer using the wall clock and random nonces.
func NewSigner(creds Credentials) *Signer {
	return &Signer{
		creds: creds,
		now:   time.Now,
		nonce: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// Header returns the Authorization header value for a request.
// Query parameters in rawURL and extra (form body parameters) are
// included in the signature; JSON bodies are not signed.
func (s *Signer) Header(method, rawURL string, extra map[string]string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("oauth1: parse url: %w", err)
	}

	oauth := map[string]string{
		"oauth_consumer_key":     s.creds.ConsumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": signatureMethod,
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_token":            s.creds.AccessToken,
		"oauth_version":          version,
	}

	params := make(map[string]string, len(oauth)+len(extra))
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	for k, v := range extra {
		params[k] = v
	}
	for k, v := range oauth {
		params[k] = v
	}

	base := BaseString(method, u, params)
	oauth["oauth_signature"] = sign(base, s.creds.ConsumerSecret, s.creds.AccessSecret)

	keys := sortedKeys(oauth)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, Encode(k), Encode(oauth[k])))
	}
	return "OAuth " + strings.Join(parts, ", "), nil
}

// BaseString builds METHOD&encoded(url)&encoded(sorted params).
// The URL is reduced to scheme, host and path.
func BaseString(method string, u *url.URL, params map[string]string) string {
	keys := sortedKeys(params)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, Encode(k)+"="+Encode(params[k]))
	}
	baseURL := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + u.EscapedPath()
	return strings.ToUpper(method) + "&" + Encode(baseURL) + "&" + Encode(strings.Join(pairs, "&"))
}

func sign(base, consumerSecret, tokenSecret string) string {
	key := Encode(consumerSecret) + "&" + Encode(tokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	_, _ = mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Encode percent-encodes s per RFC 3986, leaving only unreserved
// characters as-is.
func Encode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
