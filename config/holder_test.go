package config_test

import (
	"os"
	"testing"

	"github.com/rs/zerolog"

	"mediavault/config"
)

func TestHolder_GetAndReload(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9090\n")

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("new holder: %v", err)
	}
	defer h.Stop()

	if got := h.Get().Server.Port; got != 9090 {
		t.Errorf("port = %d, want 9090", got)
	}

	if err := os.WriteFile(path, []byte("server:\n  port: 9091\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if got := h.Get().Server.Port; got != 9091 {
		t.Errorf("port after reload = %d, want 9091", got)
	}
}

func TestHolder_ReloadKeepsOldConfigOnError(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9090\n")

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("new holder: %v", err)
	}
	defer h.Stop()

	if err := os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := h.Reload(); err == nil {
		t.Fatal("expected reload error")
	}

	if got := h.Get().Server.Port; got != 9090 {
		t.Errorf("port after failed reload = %d, want 9090", got)
	}
}

func TestHolder_OnChange(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9090\n")

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("new holder: %v", err)
	}
	defer h.Stop()

	var seen []int
	h.OnChange(func(c *config.Config) {
		seen = append(seen, c.Server.Port)
	})

	if err := os.WriteFile(path, []byte("server:\n  port: 9092\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if len(seen) != 1 || seen[0] != 9092 {
		t.Errorf("onChange calls = %v, want [9092]", seen)
	}
}
