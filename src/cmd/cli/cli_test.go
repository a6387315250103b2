package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"versioning-backend/src/config"
	"versioning-backend/src/contracts"
	"versioning-backend/src/github"
	"versioning-backend/src/store"
)

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// TestVersionFlags tests reading the build combination from flags
func TestVersionFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantType contracts.ImageType
		wantRepo contracts.RepoVersionInfo
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{
				"--image-type", "editor", "--base-os", "ubuntu-20.04",
				"--unity-version", "2021.1.0f1", "--target-platform", "linux64",
				"--repo-version", "1.2.3", "--repo-major", "1", "--repo-minor", "2", "--repo-patch", "3",
			},
			wantType: contracts.ImageEditor,
			wantRepo: contracts.RepoVersionInfo{Version: "1.2.3", Major: 1, Minor: 2, Patch: 3},
		},
		{
			name:    "unknown image type",
			args:    []string{"--image-type", "runner"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "start"}
			addVersionFlags(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error = %v", err)
			}

			imageType, info, repo, err := versionFlags(cmd)
			if (err != nil) != tt.wantErr {
				t.Fatalf("versionFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if imageType != tt.wantType {
				t.Errorf("imageType = %q, want %q", imageType, tt.wantType)
			}
			if repo != tt.wantRepo {
				t.Errorf("repo = %+v, want %+v", repo, tt.wantRepo)
			}
			if info.BaseOS != "ubuntu-20.04" || info.TargetPlatform != "linux64" {
				t.Errorf("info = %+v", info)
			}
		})
	}
}

// TestDockerFlags tests that the publish command requires image coordinates
func TestDockerFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "publish"}
	addDockerFlags(cmd)
	if err := cmd.ParseFlags([]string{"--image-repo", "org/img"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if _, err := dockerFlags(cmd); err == nil {
		t.Error("expected error when --image-name and --hash are missing")
	}

	cmd = &cobra.Command{Use: "publish"}
	addDockerFlags(cmd)
	cmd.ParseFlags([]string{"--image-repo", "org/img", "--image-name", "editor", "--hash", "sha256:abc"})
	info, err := dockerFlags(cmd)
	if err != nil {
		t.Fatalf("dockerFlags() error = %v", err)
	}
	if info.Hash != "sha256:abc" || info.ImageName != "editor" {
		t.Errorf("info = %+v", info)
	}
}

// TestBuildsCommands runs the commands end to end against the in-memory store
func TestBuildsCommands(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDPANDA_BROKERS", "")
	t.Setenv("VERSIONING_CONFIG", "")

	out, err := run(t, "builds", "start", "job-1",
		"--image-type", "editor", "--base-os", "ubuntu-20.04",
		"--unity-version", "2021.1.0f1", "--target-platform", "linux64", "--repo-version", "1.0.0")
	if err != nil {
		t.Fatalf("builds start error = %v", err)
	}
	if got := strings.TrimSpace(out); !strings.HasPrefix(got, "editor-ubuntu-20.04-2021.1.0f1-linux64-1.0.0-") {
		t.Errorf("builds start printed %q", got)
	}

	out, err = run(t, "builds", "list")
	if err != nil {
		t.Fatalf("builds list error = %v", err)
	}
	if !strings.Contains(out, "0 builds") {
		t.Errorf("expected an empty fresh in-memory store, got %q", out)
	}

	if _, err := run(t, "builds", "fail", "missing-build", "compile error"); err == nil {
		t.Error("expected error failing an unknown build")
	}
}

// TestWrapError tests the user-friendly error mapping
func TestWrapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantMessage string
		wantWrapped error
	}{
		{
			name:        "not found",
			err:         &store.StoreError{Op: "apply", BuildID: "x", Err: store.ErrNotFound},
			wantMessage: "Build not found",
			wantWrapped: store.ErrNotFound,
		},
		{
			name:        "terminal",
			err:         &store.StoreError{Op: "apply", BuildID: "x", Err: store.ErrTerminalState},
			wantMessage: "Build is already published",
			wantWrapped: store.ErrTerminalState,
		},
		{
			name:        "config",
			err:         fmt.Errorf("configuration error: %w", &config.ConfigError{Field: "GITHUB_APP_ID", Reason: "must be an integer"}),
			wantMessage: "Invalid configuration",
		},
		{
			name:        "auth",
			err:         &github.AuthError{Op: "get app", Err: &github.APIError{StatusCode: 401, Message: "Bad credentials"}},
			wantMessage: "GitHub rejected the App JWT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapError(tt.err)
			var userErr *UserError
			if !errors.As(got, &userErr) {
				t.Fatalf("expected *UserError, got %T", got)
			}
			if !strings.Contains(got.Error(), tt.wantMessage) {
				t.Errorf("Error() = %q, want substring %q", got.Error(), tt.wantMessage)
			}
			if tt.wantWrapped != nil && !errors.Is(got, tt.wantWrapped) {
				t.Errorf("expected errors.Is(%v)", tt.wantWrapped)
			}
		})
	}

	plain := errors.New("boom")
	if wrapError(plain) != plain {
		t.Error("unknown errors should pass through")
	}
	if wrapError(nil) != nil {
		t.Error("nil should stay nil")
	}
}
