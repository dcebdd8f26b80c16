package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nycunits/internal/config"
	"nycunits/internal/models"
)

func testRetryPolicy() *config.RetryPolicy {
	return &config.RetryPolicy{MaxAttempts: 3, TimeoutSec: 5}
}

func TestPlutoClient_LookupBatch(t *testing.T) {
	var gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("$where")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"bbl": "1001990025", "unitsres": "40", "unitstotal": "42"},
			{"bbl": "3000010001", "unitstotal": "7"}
		]`)
	}))
	defer srv.Close()

	client := NewPlutoClient(srv.URL, testRetryPolicy(), nil)

	if client.Kind() != ModeBatch {
		t.Fatalf("Kind = %v, want ModeBatch", client.Kind())
	}

	results, err := client.LookupBatch(context.Background(), []string{"1001990025", "3000010001", "4000020002"})
	if err != nil {
		t.Fatalf("LookupBatch failed: %v", err)
	}

	if !strings.Contains(gotQuery, "bbl in('1001990025','3000010001','4000020002')") {
		t.Errorf("Unexpected $where clause: %s", gotQuery)
	}

	res, ok := results["1001990025"]
	if !ok {
		t.Fatal("Expected result for 1001990025")
	}

	if res.Kind != models.ResultFound || res.TotalUnits != "42" || res.ResidentialUnits != "40" {
		t.Errorf("Unexpected result: %+v", res)
	}

	// Only residential missing, total present
	if results["3000010001"].TotalUnits != "7" {
		t.Errorf("Expected total 7, got %+v", results["3000010001"])
	}

	// Keys absent from the response are simply absent from the map
	if _, ok := results["4000020002"]; ok {
		t.Error("Expected no entry for key missing from the response")
	}
}

func TestPlutoClient_LookupBatch_SelectsUnitFields(t *testing.T) {
	var gotSelect, gotLimit string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSelect = r.URL.Query().Get("$select")
		gotLimit = r.URL.Query().Get("$limit")
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	client := NewPlutoClient(srv.URL, testRetryPolicy(), nil)

	if _, err := client.LookupBatch(context.Background(), []string{"1001990025"}); err != nil {
		t.Fatalf("LookupBatch failed: %v", err)
	}

	if gotSelect != "bbl, unitsres, unitstotal" {
		t.Errorf("Unexpected $select: %q", gotSelect)
	}

	if gotLimit != "50000" {
		t.Errorf("Unexpected $limit: %q", gotLimit)
	}
}

func TestPlutoClient_LookupBatch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewPlutoClient(srv.URL, testRetryPolicy(), nil)

	_, err := client.LookupBatch(context.Background(), []string{"1001990025"})
	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Fatalf("Expected ErrUnexpectedStatusCode, got %v", err)
	}
}

func TestPlutoClient_LookupBatch_TransportFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewPlutoClient(srv.URL, testRetryPolicy(), nil)

	if _, err := client.LookupBatch(context.Background(), []string{"1001990025"}); err == nil {
		t.Fatal("Expected error for unreachable server")
	}
}

func TestPlutoClient_LookupOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"bbl": "1001990025", "unitstotal": "42"}]`)
	}))
	defer srv.Close()

	client := NewPlutoClient(srv.URL, testRetryPolicy(), nil)

	res := client.LookupOne(context.Background(), "1001990025")
	if res.Kind != models.ResultFound || res.TotalUnits != "42" {
		t.Errorf("Unexpected result: %+v", res)
	}

	missing := client.LookupOne(context.Background(), "9999999999")
	if missing.Kind != models.ResultNotFound {
		t.Errorf("Expected ResultNotFound, got %+v", missing)
	}
}

func TestNew_StrategySelection(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		strategy string
		wantMode Mode
	}{
		{config.StrategyPluto, ModeBatch},
		{config.StrategyPortal, ModeSingle},
		{config.StrategyResilient, ModeSingle},
	}

	for _, tt := range tests {
		cfg.Lookup.Strategy = tt.strategy

		client, err := New(cfg, nil)
		if err != nil {
			t.Fatalf("New(%s) failed: %v", tt.strategy, err)
		}

		if client.Kind() != tt.wantMode {
			t.Errorf("New(%s).Kind() = %v, want %v", tt.strategy, client.Kind(), tt.wantMode)
		}
	}

	cfg.Lookup.Strategy = "unknown"
	if _, err := New(cfg, nil); !errors.Is(err, config.ErrInvalidStrategy) {
		t.Errorf("Expected ErrInvalidStrategy, got %v", err)
	}
}
