package authcode

import (
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestAuthorizationURL(t *testing.T) {
	t.Parallel()

	type testCase struct {
		modify func(*FlowConfig)
		state  string

		expectedBase   string
		expectedParams url.Values
	}

	tests := map[string]testCase{
		"google-defaults": {
			modify:       func(*FlowConfig) {},
			expectedBase: "https://accounts.google.com/o/oauth2/auth",
			expectedParams: url.Values{
				"response_type":          {"code"},
				"client_id":              {"test-client"},
				"redirect_uri":           {"http://localhost:8080/"},
				"scope":                  {"email profile"},
				"access_type":            {"offline"},
				"include_granted_scopes": {"true"},
			},
		},
		"online-without-granted-scopes": {
			modify: func(c *FlowConfig) {
				c.AccessType = "online"
				c.IncludeGrantedScopes = false
				c.Scopes = []string{"https://www.googleapis.com/auth/drive.readonly"}
				c.Port = 3000
			},
			expectedBase: "https://accounts.google.com/o/oauth2/auth",
			expectedParams: url.Values{
				"response_type":          {"code"},
				"client_id":              {"test-client"},
				"redirect_uri":           {"http://localhost:3000/"},
				"scope":                  {"https://www.googleapis.com/auth/drive.readonly"},
				"access_type":            {"online"},
				"include_granted_scopes": {"false"},
			},
		},
		"with-state": {
			modify:       func(*FlowConfig) {},
			state:        "0b9f3c1e-state",
			expectedBase: "https://accounts.google.com/o/oauth2/auth",
			expectedParams: url.Values{
				"response_type":          {"code"},
				"client_id":              {"test-client"},
				"redirect_uri":           {"http://localhost:8080/"},
				"scope":                  {"email profile"},
				"access_type":            {"offline"},
				"include_granted_scopes": {"true"},
				"state":                  {"0b9f3c1e-state"},
			},
		},
		"custom-endpoint": {
			modify: func(c *FlowConfig) {
				c.Endpoint = oauth2.Endpoint{
					AuthURL:  "https://idp.example.com/authorize",
					TokenURL: "https://idp.example.com/token",
				}
			},
			expectedBase: "https://idp.example.com/authorize",
			expectedParams: url.Values{
				"response_type":          {"code"},
				"client_id":              {"test-client"},
				"redirect_uri":           {"http://localhost:8080/"},
				"scope":                  {"email profile"},
				"access_type":            {"offline"},
				"include_granted_scopes": {"true"},
			},
		},
	}

	for name, tc := range tests {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := testFlowConfig()
			tc.modify(&cfg)
			got := AuthorizationURL(cfg, tc.state)

			if again := AuthorizationURL(cfg, tc.state); again != got {
				t.Errorf("Expected the same URL twice, got %q and %q", got, again)
			}

			u, err := url.Parse(got)
			if err != nil {
				t.Fatalf("Error parsing %q: %v", got, err)
			}
			base := u.Scheme + "://" + u.Host + u.Path
			if base != tc.expectedBase {
				t.Errorf("Expected URL to start with %q, got %q", tc.expectedBase, base)
			}
			params := u.Query()
			if len(params) != len(tc.expectedParams) {
				t.Errorf("Expected %d params, got %d: %v", len(tc.expectedParams), len(params), params)
			}
			for k, v := range tc.expectedParams {
				if strings.Join(params[k], ",") != strings.Join(v, ",") {
					t.Errorf("Expected %s to be %v, got %v", k, v, params[k])
				}
			}
		})
	}
}

func TestNewState(t *testing.T) {
	t.Parallel()

	first, err := newState()
	if err != nil {
		t.Fatalf("Error generating state: %v", err)
	}
	second, err := newState()
	if err != nil {
		t.Fatalf("Error generating state: %v", err)
	}
	if first == "" || first == second {
		t.Errorf("Expected two distinct non-empty states, got %q and %q", first, second)
	}
}
