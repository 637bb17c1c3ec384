package jobs

import (
	"net/url"
	"strings"
)

// Query parameters that only track where a click came from.
var trackingParams = map[string]struct{}{
	"gclid":      {},
	"fbclid":     {},
	"msclkid":    {},
	"ref":        {},
	"refid":      {},
	"trk":        {},
	"trackingid": {},
}

// CanonicalURL normalizes a URL so that links pointing at the same posting
// compare equal. URLs that fail to parse are returned trimmed but otherwise
// untouched.
func CanonicalURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme == "http" {
		u.Scheme = "https"
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	if port := u.Port(); port != "" && port != "80" && port != "443" {
		host += ":" + port
	}

	u.Host = host
	u.User = nil
	u.Fragment = ""
	u.RawFragment = ""

	if u.RawQuery != "" {
		u.RawQuery = canonicalQuery(u.Query())
	}

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	return u.String()
}

func canonicalQuery(q url.Values) string {
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") {
			q.Del(k)

			continue
		}

		if _, skip := trackingParams[lk]; skip {
			q.Del(k)
		}
	}

	// Encode sorts by key.
	return q.Encode()
}
