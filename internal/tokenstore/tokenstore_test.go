package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestFileStoreRead(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		perm    os.FileMode
		want    string
		wantErr string
	}{
		{name: "trims whitespace", content: "1000.abc.def\n", perm: 0600, want: "1000.abc.def"},
		{name: "owner read-only is accepted", content: "tok", perm: 0400, want: "tok"},
		{name: "group readable is rejected", content: "tok", perm: 0640, wantErr: "insecure permissions"},
		{name: "empty file", content: "  \n", perm: 0600, wantErr: "empty token file"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "token-"+string(rune('a'+i)))
			if err := os.WriteFile(path, []byte(tt.content), tt.perm); err != nil {
				t.Fatalf("writing fixture: %v", err)
			}
			if err := os.Chmod(path, tt.perm); err != nil {
				t.Fatalf("chmod fixture: %v", err)
			}

			store, err := NewFileStore(path)
			if err != nil {
				t.Fatalf("NewFileStore() error = %v", err)
			}

			got, err := store.Read(context.Background())
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Read() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, err := store.Read(context.Background()); !os.IsNotExist(err) {
		t.Errorf("Read() error = %v, want not-exist", err)
	}
}

func TestEnvStoreRead(t *testing.T) {
	env := map[string]string{
		"SET":   "  refresh-token ",
		"EMPTY": "",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	tests := []struct {
		key     string
		want    string
		wantErr string
	}{
		{key: "SET", want: "refresh-token"},
		{key: "EMPTY", wantErr: "is empty"},
		{key: "UNSET", wantErr: "not set"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			store, err := newEnvStore(tt.key, lookup)
			if err != nil {
				t.Fatalf("newEnvStore() error = %v", err)
			}
			got, err := store.Read(context.Background())
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Read() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnvStoreEmptyKey(t *testing.T) {
	if _, err := NewEnvStore(""); err == nil {
		t.Error("NewEnvStore(\"\") expected error")
	}
}

func TestKeyringStoreRead(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore("signbridge-test", "alice")
	if err != nil {
		t.Fatalf("NewKeyringStore() error = %v", err)
	}

	if _, err := store.Read(context.Background()); err == nil {
		t.Fatal("Read() expected error for missing entry")
	}

	if err := keyring.Set("signbridge-test", "alice", "1000.refresh"); err != nil {
		t.Fatalf("keyring.Set() error = %v", err)
	}
	got, err := store.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != "1000.refresh" {
		t.Errorf("Read() = %q, want %q", got, "1000.refresh")
	}
}

func TestReadHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store, err := NewFileStore(filepath.Join(t.TempDir(), "token"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, err := store.Read(ctx); err != context.Canceled {
		t.Errorf("Read() error = %v, want context.Canceled", err)
	}
}
