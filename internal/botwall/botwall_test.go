package botwall

import (
	"net/http"
	"testing"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		body   string
		vendor string
		want   bool
	}{
		{
			name:   "cloudflare server header",
			status: http.StatusForbidden,
			header: http.Header{"Server": {"cloudflare"}},
			vendor: "Cloudflare",
			want:   true,
		},
		{
			name:   "cloudflare turnstile body on 503",
			status: http.StatusServiceUnavailable,
			header: http.Header{},
			body:   `<div class="cf-turnstile"></div>`,
			vendor: "Cloudflare",
			want:   true,
		},
		{
			name:   "akamai reference block page",
			status: http.StatusForbidden,
			header: http.Header{},
			body:   "Access Denied. Reference #18.1234",
			vendor: "Akamai",
			want:   true,
		},
		{
			name:   "datadome header",
			status: http.StatusForbidden,
			header: http.Header{"X-Datadome": {"challenge"}},
			vendor: "DataDome",
			want:   true,
		},
		{
			name:   "perimeterx captcha body",
			status: http.StatusForbidden,
			header: http.Header{},
			body:   `<script src="https://client.perimeterx.net/x.js"></script>`,
			vendor: "PerimeterX",
			want:   true,
		},
		{
			name:   "plain 403 is not a wall",
			status: http.StatusForbidden,
			header: http.Header{},
			body:   "forbidden",
			want:   false,
		},
		{
			name:   "successful response is never a wall",
			status: http.StatusOK,
			header: http.Header{"Server": {"cloudflare"}},
			body:   "cf-turnstile",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendor, ok := Identify(tt.status, tt.header, []byte(tt.body))
			if ok != tt.want {
				t.Fatalf("ok = %v, want %v", ok, tt.want)
			}
			if ok && vendor != tt.vendor {
				t.Errorf("vendor = %q, want %q", vendor, tt.vendor)
			}
		})
	}
}
