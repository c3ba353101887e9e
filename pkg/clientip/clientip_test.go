package clientip

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIPIgnoresProxyHeaders(t *testing.T) {
	r := &http.Request{
		RemoteAddr: "203.0.113.9:54321",
		Header: http.Header{
			"X-Forwarded-For": []string{"198.51.100.1"},
			"X-Real-Ip":       []string{"198.51.100.2"},
		},
	}
	assert.Equal(t, "203.0.113.9", RealClientIP(r))
}

func TestRealClientIPWithoutPort(t *testing.T) {
	r := &http.Request{RemoteAddr: "203.0.113.9"}
	assert.Equal(t, "203.0.113.9", RealClientIP(r))
}
