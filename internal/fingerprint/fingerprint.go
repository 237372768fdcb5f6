package fingerprint

import (
	"context"
	"fmt"
	"net"
	"net/http"

	utls "github.com/refraction-networking/utls"
)

// Profile selects the TLS ClientHello presented when probing company
// homepages. Some startup sites sit behind bot walls that reject the default
// Go handshake, so the probe defaults to a browser profile.
type Profile string

const (
	ProfileChrome Profile = "chrome"
	ProfileGo     Profile = "go" // standard library TLS
)

// Transport returns an http.RoundTripper using the requested profile. The
// "go" profile is a plain cloned http.DefaultTransport; anything else wraps
// the dialer with a uTLS handshake.
func Transport(p Profile) (http.RoundTripper, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if p == ProfileGo {
		return transport, nil
	}
	if p != ProfileChrome && p != "" {
		return nil, fmt.Errorf("unknown fingerprint profile %q", p)
	}

	transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		tcpConn, err := transport.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		uConn := utls.UClient(tcpConn, &utls.Config{ServerName: host}, utls.HelloChrome_Auto)
		if err := uConn.HandshakeContext(ctx); err != nil {
			_ = tcpConn.Close()
			return nil, fmt.Errorf("utls handshake failed: %w", err)
		}
		return uConn, nil
	}

	return transport, nil
}
