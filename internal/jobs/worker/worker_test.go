package worker

import (
	"strings"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Concurrency: 2}.withDefaults()
	if cfg.Concurrency != 2 || cfg.PollInterval != time.Second || cfg.MaxAttempts != 5 {
		t.Fatalf("defaults: %+v", cfg)
	}

	cfg = Config{Concurrency: -1, RetryDelay: time.Minute}.withDefaults()
	if cfg.Concurrency != DefaultConfig().Concurrency {
		t.Fatalf("negative concurrency: got %d", cfg.Concurrency)
	}
	if cfg.RetryDelay != time.Minute {
		t.Fatalf("explicit retry delay overwritten: %v", cfg.RetryDelay)
	}
}

func TestErrorMessages(t *testing.T) {
	if got := (&panicError{Val: "nil map"}).Error(); got != "panic: nil map" {
		t.Fatalf("panicError: %q", got)
	}
	if got := (&missingHandlerError{JobType: "x"}).Error(); !strings.Contains(got, "job_type=x") {
		t.Fatalf("missingHandlerError: %q", got)
	}
}
