package httpserver

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	ps := parseProxies([]string{"10.0.0.0/8", "192.0.2.9", "not-an-ip"})
	assert.Len(t, ps, 2)

	cases := []struct {
		name   string
		remote string
		xff    string
		xrip   string
		want   string
	}{
		{"untrusted peer ignores headers", "203.0.113.5:1000", "1.2.3.4", "5.6.7.8", "203.0.113.5"},
		{"trusted peer uses last untrusted hop", "10.1.1.1:80", "1.2.3.4, 198.51.100.3, 10.2.2.2", "", "198.51.100.3"},
		{"bare ip entry is trusted", "192.0.2.9:80", "198.51.100.4", "", "198.51.100.4"},
		{"x-real-ip fallback", "10.1.1.1:80", "", "198.51.100.5", "198.51.100.5"},
		{"garbage header keeps peer", "10.1.1.1:80", "nonsense", "also-bad", "10.1.1.1"},
		{"all hops trusted keeps peer", "10.1.1.1:80", "10.3.3.3", "", "10.1.1.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remote
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xrip != "" {
				r.Header.Set("X-Real-IP", tc.xrip)
			}
			assert.Equal(t, tc.want, ps.clientIP(r))
		})
	}
}
