package dataset

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campscore/internal/schema"
)

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/training-data" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"records":[
			{"record":{"funding_stage":"seed","sector":"SaaS","runway_months":14},"label":1},
			{"record":{"funding_stage":"series b","runway_months":4},"label":0}
		]}`))
	}))
	defer srv.Close()

	records, labels, err := NewClient(srv.URL, 5*time.Second).Fetch()
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].FundingStage != schema.StageSeed || records[0].Sector != "saas" {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[1].FundingStage != schema.StageSeriesB {
		t.Errorf("record 1 stage = %q", records[1].FundingStage)
	}
	if labels[0] != 1 || labels[1] != 0 {
		t.Errorf("labels = %v", labels)
	}
}

func TestClientFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, _, err := NewClient(srv.URL, 5*time.Second).Fetch(); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestClientFetchServicePayloadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"snapshot not ready"}`))
	}))
	defer srv.Close()

	if _, _, err := NewClient(srv.URL, 5*time.Second).Fetch(); err == nil {
		t.Fatal("expected error from service payload")
	}
}

func TestClientFetchRejectsBadLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"records":[{"record":{"funding_stage":"seed"},"label":3}]}`))
	}))
	defer srv.Close()

	if _, _, err := NewClient(srv.URL, 5*time.Second).Fetch(); err == nil {
		t.Fatal("expected error for non-binary label")
	}
}
