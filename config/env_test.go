package config

import (
	"reflect"
	"testing"
	"time"
)

func TestGetEnvAsTimeDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "duration string", value: "250ms", want: 250 * time.Millisecond},
		{name: "bare seconds", value: "30", want: 30 * time.Second},
		{name: "garbage falls back", value: "soon", want: 7 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := getEnvAsTimeDuration("TEST_DURATION", 7*time.Second); got != tt.want {
				t.Errorf("getEnvAsTimeDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("TEST_SLICE", " a, b ,,c ")
	got := getEnvAsSlice("TEST_SLICE", nil)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("getEnvAsSlice() = %v, want %v", got, want)
	}
}

func TestLoad_StoreSettings(t *testing.T) {
	t.Setenv("STORE_REQUIRE_CUSTOMER_DETAILS", "true")
	t.Setenv("ORDER_STRICT_TRANSITIONS", "1")
	t.Setenv("EVENTS_BROKER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load()
	if !cfg.Store.RequireCustomerDetails {
		t.Fatalf("expected customer details to be required")
	}
	if !cfg.Store.StrictTransitions {
		t.Fatalf("expected strict transitions")
	}
	if cfg.Events.Broker != "kafka" || len(cfg.Events.KafkaBrokers) != 2 {
		t.Fatalf("unexpected events config: %+v", cfg.Events)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Database.Driver != "pg" {
		t.Errorf("expected default driver pg, got %q", cfg.Database.Driver)
	}
	if cfg.Store.RequireCustomerDetails {
		t.Errorf("customer details should be optional by default")
	}
	if cfg.Cache.MenuTTL != 5*time.Minute {
		t.Errorf("unexpected menu ttl %v", cfg.Cache.MenuTTL)
	}
	if cfg.Store.DraftTTL != 4*time.Hour || cfg.Store.MaxDrafts != 1000 {
		t.Errorf("unexpected draft limits %v %d", cfg.Store.DraftTTL, cfg.Store.MaxDrafts)
	}
}
