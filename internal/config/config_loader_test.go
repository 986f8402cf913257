package config

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const validConfig = `
feeds:
  - name: metro
    url: https://gtfs.example.com/metro.zip
    auth_header_key: x-api-key
    auth_header_value: secret
  - name: ferry
    path: /data/ferry
`

func TestLoadConfigFromFile(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		feeds, err := loadConfigFromFile(writeConfigFile(t, validConfig))
		if err != nil {
			t.Fatalf("loadConfigFromFile failed: %v", err)
		}

		if len(feeds) != 2 {
			t.Fatalf("Expected 2 feeds, got %d", len(feeds))
		}

		expected := FeedSource{
			Name:            "metro",
			URL:             "https://gtfs.example.com/metro.zip",
			AuthHeaderKey:   "x-api-key",
			AuthHeaderValue: "secret",
		}
		if feeds[0] != expected {
			t.Errorf("Expected feed %+v, got %+v", expected, feeds[0])
		}
		if !feeds[0].IsRemote() || feeds[1].IsRemote() {
			t.Errorf("Unexpected IsRemote values for %+v", feeds)
		}
		if feeds[1].Path != "/data/ferry" {
			t.Errorf("Expected path /data/ferry, got %q", feeds[1].Path)
		}
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		_, err := loadConfigFromFile(writeConfigFile(t, "feeds: [ this is : not yaml"))
		if err == nil {
			t.Errorf("Expected error with invalid YAML, got none")
		}
	})

	t.Run("NonExistentFile", func(t *testing.T) {
		_, err := loadConfigFromFile("non-existent-file.yml")
		if err == nil {
			t.Errorf("Expected error for non-existent file, got none")
		}
	})
}

func TestParseFeedsValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"No feeds", "feeds: []", "invalid configuration"},
		{"Missing name", "feeds:\n  - path: /data", "invalid configuration"},
		{"Neither url nor path", "feeds:\n  - name: a", "invalid configuration"},
		{"Both url and path", "feeds:\n  - name: a\n    url: https://x.example.com/a.zip\n    path: /data", "invalid configuration"},
		{"Malformed url", "feeds:\n  - name: a\n    url: not a url", "invalid configuration"},
		{"Duplicate names", "feeds:\n  - name: a\n    path: /a\n  - name: a\n    path: /b", "invalid configuration"},
		{"Valid", "feeds:\n  - name: a\n    path: /a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFeeds([]byte(tt.content))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfigFromURL(t *testing.T) {
	shortBackoff(t)
	client := &http.Client{
		Timeout: 10 * time.Second,
	}
	ctx := context.Background()

	t.Run("ValidResponse", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || user != "user" || pass != "pass" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write([]byte(validConfig))
		}))
		defer ts.Close()

		feeds, err := loadConfigFromURL(ctx, client, ts.URL, "user", "pass", 0)
		if err != nil {
			t.Fatalf("loadConfigFromURL failed: %v", err)
		}
		if len(feeds) != 2 || feeds[0].Name != "metro" {
			t.Errorf("Unexpected feeds: %+v", feeds)
		}
	})

	t.Run("ErrorResponse", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer ts.Close()

		_, err := loadConfigFromURL(ctx, client, ts.URL, "", "", 0)
		if err == nil || !strings.Contains(err.Error(), "status: 404") {
			t.Errorf("Expected status error, got %v", err)
		}
	})

	t.Run("InvalidYAMLResponse", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`feeds: [ this is : not yaml`))
		}))
		defer ts.Close()

		_, err := loadConfigFromURL(ctx, client, ts.URL, "", "", 0)
		if err == nil {
			t.Errorf("Expected error for invalid YAML response, got none")
		}
	})

	t.Run("InvalidURL", func(t *testing.T) {
		_, err := loadConfigFromURL(ctx, client, "://invalid-url", "", "", 0)
		if err == nil || !strings.Contains(err.Error(), "failed to create request") {
			t.Errorf("Expected request creation error, got: %v", err)
		}
	})

	t.Run("ExportedWrapper", func(t *testing.T) {
		_, err := LoadConfigFromURL(ctx, client, "://invalid-url", "", "")
		if err == nil || !strings.Contains(err.Error(), "failed to load config from URL") {
			t.Errorf("Expected wrapped error, got: %v", err)
		}
	})
}

func TestValidateConfigFlags(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		configURL   string
		extraArgs   []string
		expectError bool
	}{
		{"No config", "", "", nil, true},
		{"Valid local config", "config.yml", "", nil, false},
		{"Valid remote config", "", "http://example.com/config.yml", nil, false},
		{"Both config file and URL", "config.yml", "http://example.com/config.yml", nil, true},
		{"Config file with extra args", "config.yml", "", []string{"extraArg"}, true},
		{"Config URL with extra args", "", "http://example.com/config.yml", []string{"extraArg"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(tt.name, flag.ContinueOnError)
			var output bytes.Buffer
			flag.CommandLine.SetOutput(&output)

			configFile := flag.String("config-file", "", "Path to config file")
			configURL := flag.String("config-url", "", "URL to config")

			args := []string{"cmd"}
			if tt.configFile != "" {
				args = append(args, "--config-file="+tt.configFile)
			}
			if tt.configURL != "" {
				args = append(args, "--config-url="+tt.configURL)
			}
			args = append(args, tt.extraArgs...)

			os.Args = args
			_ = flag.CommandLine.Parse(args[1:])

			err := ValidateConfigFlags(configFile, configURL)

			if (err != nil) != tt.expectError {
				t.Errorf("Expected error: %v, got: %v", tt.expectError, err)
			}

			if err != nil {
				expected := "only one of --config-file or --config-url"
				if tt.configFile == "" && tt.configURL == "" {
					expected = "no configuration provided, either --config-file or --config-url must be specified"
				}

				if !strings.Contains(err.Error(), expected) {
					t.Errorf("Unexpected error message: %v", err)
				}
			}
		})
	}
}

func TestRefreshConfig(t *testing.T) {
	cfg := NewConfig(4000, "testing", []FeedSource{{Name: "original", Path: "/data/original"}})

	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var serverHitCount atomic.Int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverHitCount.Add(1)

		user, pass, hasAuth := r.BasicAuth()
		if hasAuth && (user != "testuser" || pass != "testpass") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		fmt.Fprintln(w, "feeds:\n  - name: refreshed\n    url: https://refreshed.example.com/gtfs.zip")
	}))
	defer mockServer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		refreshConfig(ctx, client, mockServer.URL, "testuser", "testpass", cfg, testLogger, 50*time.Millisecond, 0)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := cfg.GetFeed("refreshed"); ok {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if serverHitCount.Load() == 0 {
		t.Fatal("Mock server was never called")
	}

	feeds := cfg.GetFeeds()
	if len(feeds) != 1 || feeds[0].Name != "refreshed" {
		t.Errorf("Config not updated with refreshed feed data, got %+v", feeds)
	}
}

func TestRefreshConfigKeepsFeedsOnFailure(t *testing.T) {
	shortBackoff(t)
	cfg := NewConfig(4000, "testing", []FeedSource{{Name: "original", Path: "/data/original"}})
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer mockServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	refreshConfig(ctx, mockServer.Client(), mockServer.URL, "", "", cfg, testLogger, 20*time.Millisecond, 0)

	if _, ok := cfg.GetFeed("original"); !ok {
		t.Errorf("Expected original feed to survive failed refreshes, got %+v", cfg.GetFeeds())
	}
}
