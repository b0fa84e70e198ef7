package main

import (
	"testing"

	"github.com/LeventeLantos/sms-dispatch/internal/config"
)

func TestSelectProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.ProviderConfig
		wantMode string
		wantName string
	}{
		{
			name:     "nothing configured",
			cfg:      config.ProviderConfig{},
			wantMode: "simulation",
		},
		{
			name: "placeholder credentials",
			cfg: config.ProviderConfig{
				TwilioAccountSID: "your_account_sid_here",
				TwilioAuthToken:  "your_auth_token_here",
			},
			wantMode: "simulation",
		},
		{
			name:     "webhook",
			cfg:      config.ProviderConfig{WebhookURL: "http://localhost:9999/send"},
			wantMode: "webhook",
			wantName: "webhook",
		},
		{
			name: "twilio wins over webhook",
			cfg: config.ProviderConfig{
				TwilioAccountSID: "AC123",
				TwilioAuthToken:  "secret",
				WebhookURL:       "http://localhost:9999/send",
			},
			wantMode: "twilio",
			wantName: "twilio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, mode := selectProvider(tt.cfg)
			if mode != tt.wantMode {
				t.Fatalf("expected mode %q, got %q", tt.wantMode, mode)
			}
			if tt.wantName == "" {
				if p != nil {
					t.Fatalf("expected nil provider, got %T", p)
				}
				return
			}
			if p == nil || p.Name() != tt.wantName {
				t.Fatalf("expected provider %q, got %v", tt.wantName, p)
			}
		})
	}
}
