package sanitizer

import (
	"net/url"
	"strings"
)

// SanitizeImageURL normalizes a stored image URL. Invalid URLs come back
// empty and are dropped by SanitizeSlice.
func SanitizeImageURL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}

	u.Host = strings.ToLower(u.Host)
	if after, ok := strings.CutPrefix(u.Host, "www."); ok {
		u.Host = after
	}
	u.Path = strings.TrimSuffix(strings.TrimSpace(u.Path), "/")

	q := u.Query()
	qClean := url.Values{}
	for k, values := range q {
		key := strings.TrimSpace(strings.ToLower(k))
		if strings.HasPrefix(key, "utm_") {
			continue
		}
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				qClean.Add(key, v)
			}
		}
	}
	u.RawQuery = qClean.Encode()

	return u.String()
}
