// Package botwall recognizes the block pages that bot-protection vendors
// serve instead of real content. The contact probe uses it to tell "this
// homepage has no contact info" apart from "this homepage refused to talk to
// us".
package botwall

import (
	"bytes"
	"net/http"
	"strings"
)

// Detector inspects a response and names the protection vendor if it blocked
// the request.
type Detector func(statusCode int, header http.Header, body []byte) (detected bool, vendor string)

// DefaultDetectors returns the standard list of block-page detectors.
func DefaultDetectors() []Detector {
	return []Detector{
		detectCloudflare,
		detectAkamai,
		detectDataDome,
		detectPerimeterX,
	}
}

// Identify runs the response through all detectors and returns the vendor of
// the first match.
func Identify(statusCode int, header http.Header, body []byte) (string, bool) {
	for _, d := range DefaultDetectors() {
		if detected, vendor := d(statusCode, header, body); detected {
			return vendor, true
		}
	}
	return "", false
}

// detectCloudflare looks for common Cloudflare challenge/block signatures.
func detectCloudflare(statusCode int, header http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden && statusCode != http.StatusServiceUnavailable {
		return false, ""
	}
	if strings.Contains(strings.ToLower(header.Get("Server")), "cloudflare") {
		return true, "Cloudflare"
	}
	if bytes.Contains(body, []byte("cf-browser-verification")) ||
		bytes.Contains(body, []byte("cloudflare-nginx")) ||
		bytes.Contains(body, []byte("cf-turnstile")) ||
		bytes.Contains(body, []byte("Attention Required! | Cloudflare")) {
		return true, "Cloudflare"
	}
	return false, ""
}

// detectAkamai looks for Akamai Bot Manager signatures.
func detectAkamai(statusCode int, header http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden {
		return false, ""
	}
	if strings.Contains(strings.ToLower(header.Get("Server")), "akamai") {
		return true, "Akamai"
	}
	// Akamai often returns a generic "Reference #" block page
	if bytes.Contains(body, []byte("Reference #")) && bytes.Contains(body, []byte("Access Denied")) {
		return true, "Akamai"
	}
	return false, ""
}

// detectDataDome looks for DataDome challenge/block signatures.
func detectDataDome(statusCode int, header http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden {
		return false, ""
	}
	if strings.Contains(strings.ToLower(header.Get("Server")), "datadome") {
		return true, "DataDome"
	}
	if header.Get("X-DataDome") != "" || header.Get("X-DataDome-Response") != "" {
		return true, "DataDome"
	}
	if bytes.Contains(body, []byte("geo.captcha-delivery.com")) || bytes.Contains(body, []byte("datadome")) {
		return true, "DataDome"
	}
	return false, ""
}

// detectPerimeterX looks for PerimeterX (HUMAN) signatures.
func detectPerimeterX(statusCode int, header http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden {
		return false, ""
	}
	if header.Get("X-Px-Captcha") != "" {
		return true, "PerimeterX"
	}
	if bytes.Contains(body, []byte("client.perimeterx.net")) ||
		bytes.Contains(body, []byte("px-captcha")) ||
		bytes.Contains(body, []byte("_pxBlock")) {
		return true, "PerimeterX"
	}
	return false, ""
}
