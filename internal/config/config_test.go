package config

import "testing"

func TestDefaults(t *testing.T) {
	cfg := New()
	if cfg.ServerAddr() != "127.0.0.1:50001" {
		t.Errorf("ServerAddr: %q", cfg.ServerAddr())
	}
	if cfg.ListenPort() != 50001 {
		t.Errorf("ListenPort: %d", cfg.ListenPort())
	}
	if cfg.OutputDir() != "." {
		t.Errorf("OutputDir: %q", cfg.OutputDir())
	}
	if cfg.ServiceName() == "" || cfg.ServiceDisplayName() == "" {
		t.Error("service identity must have defaults")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ARCSEND_SERVER", "10.1.2.3:6000")
	t.Setenv("ARCSEND_LISTEN_PORT", "6000")
	t.Setenv("ARCSEND_OUTPUT_DIR", "/srv/incoming")
	cfg := New()
	if cfg.ServerAddr() != "10.1.2.3:6000" {
		t.Errorf("ServerAddr: %q", cfg.ServerAddr())
	}
	if cfg.ListenPort() != 6000 {
		t.Errorf("ListenPort: %d", cfg.ListenPort())
	}
	if cfg.OutputDir() != "/srv/incoming" {
		t.Errorf("OutputDir: %q", cfg.OutputDir())
	}
}

func TestBadPortFallsBack(t *testing.T) {
	t.Setenv("ARCSEND_LISTEN_PORT", "not-a-port")
	if got := New().ListenPort(); got != 50001 {
		t.Errorf("ListenPort: %d, want default", got)
	}
}
