package timeouts

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	Reset()
	if Ping() != DefaultPing {
		t.Errorf("Ping = %v, want %v", Ping(), DefaultPing)
	}
	if Short() != DefaultShort {
		t.Errorf("Short = %v, want %v", Short(), DefaultShort)
	}
	if Medium() != DefaultMedium {
		t.Errorf("Medium = %v, want %v", Medium(), DefaultMedium)
	}
	if Long() != DefaultLong {
		t.Errorf("Long = %v, want %v", Long(), DefaultLong)
	}
}

func TestConfigure_PartialOverride(t *testing.T) {
	Reset()
	defer Reset()

	Configure(Config{Short: 15 * time.Second})

	if Short() != 15*time.Second {
		t.Errorf("Short = %v, want 15s", Short())
	}
	// Zero values keep defaults.
	if Medium() != DefaultMedium {
		t.Errorf("Medium = %v, want default", Medium())
	}
}

func TestConfigureFromEnv(t *testing.T) {
	Reset()
	defer Reset()

	t.Setenv("TIMEOUT_SHORT", "7s")
	t.Setenv("TIMEOUT_LONG", "bogus")

	n := ConfigureFromEnv()
	if n != 1 {
		t.Errorf("configured = %d, want 1", n)
	}
	if Short() != 7*time.Second {
		t.Errorf("Short = %v, want 7s", Short())
	}
	if Long() != DefaultLong {
		t.Errorf("Long = %v, want default (invalid env ignored)", Long())
	}
}
