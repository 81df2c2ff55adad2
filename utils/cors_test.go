package utils

import "testing"

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		origin  string
		allowed bool
	}{
		// Allowed: localhost
		{"http://localhost", true},
		{"http://localhost:8081", true},
		{"https://localhost:3000", true},

		// Allowed: private IPs
		{"http://192.168.1.1", true},
		{"http://192.168.1.1:7777", true},
		{"http://10.0.0.1", true},
		{"http://10.0.0.1:8080", true},
		{"http://172.16.0.1", true},
		{"http://172.31.255.255:443", true},
		{"http://127.0.0.1", true},
		{"http://127.0.0.1:3000", true},

		// Allowed: link-local
		{"http://169.254.1.1", true},

		// Allowed: .local hostnames
		{"http://mynas.local", true},
		{"http://mynas.local:7777", true},

		// Allowed: single-label hostnames (LAN)
		{"http://cinelist:7777", true},

		// Blocked: public domains
		{"http://example.com", false},
		{"https://evil.com", false},
		{"https://google.com", false},
		{"http://api.themoviedb.org.evil.com", false},

		// Blocked: public IPs
		{"http://8.8.8.8", false},
		{"http://1.1.1.1", false},

		// Blocked: empty/invalid
		{"", false},
		{"not-a-url", false},
	}

	for _, tt := range tests {
		got := IsAllowedOrigin(tt.origin)
		if got != tt.allowed {
			t.Errorf("IsAllowedOrigin(%q) = %v, want %v", tt.origin, got, tt.allowed)
		}
	}
}

func TestOriginPolicy(t *testing.T) {
	policy := NewOriginPolicy([]string{" https://Watch.Example.com/ ", ""})

	if !policy.Allowed("https://watch.example.com") {
		t.Error("expected listed origin to be allowed regardless of case and trailing slash")
	}
	if !policy.Allowed("http://localhost:8081") {
		t.Error("expected local origin to stay allowed")
	}
	if policy.Allowed("https://other.example.com") {
		t.Error("expected unlisted public origin to be blocked")
	}

	var nilPolicy *OriginPolicy
	if !nilPolicy.Allowed("http://127.0.0.1") || nilPolicy.Allowed("https://example.com") {
		t.Error("nil policy should fall back to the local-network rules")
	}
}
