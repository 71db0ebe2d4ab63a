package security

import (
	"net/http"
	"net/url"
	"strings"
)

// SameOrigin rejects state-changing requests whose Origin (or, failing that,
// Referer) names a different host than the request. Requests carrying neither
// header are let through; non-browser clients do not send them.
func SameOrigin(onReject func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			source := r.Header.Get("Origin")
			if source == "" || source == "null" {
				source = r.Header.Get("Referer")
			}
			if source != "" && !sameHost(source, r.Host) {
				if onReject != nil {
					onReject(w, r)
				} else {
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sameHost(rawURL, host string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, host)
}
