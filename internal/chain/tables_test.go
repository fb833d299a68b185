package chain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func tableServer(t *testing.T, rows map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chain/get_table_rows" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req tableRowsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if !req.JSON {
			t.Error("json flag not set")
		}
		row, ok := rows[req.Code+"/"+req.Table]
		if !ok {
			w.Write([]byte(`{"rows":[],"more":false}`))
			return
		}
		w.Write([]byte(`{"rows":[` + row + `],"more":false}`))
	}))
}

func TestFetchDeposit(t *testing.T) {
	var got tableRowsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"rows":[{"acc_name":"uosaccount12","deposit":1000000,"withdrawal":"250000"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 1, 10*time.Millisecond)
	dep, err := client.FetchDeposit(context.Background(), "uos.timelock", "uosaccount12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dep == nil {
		t.Fatal("expected deposit, got nil")
	}
	if dep.Total != "1000000" {
		t.Errorf("Total = %q, want 1000000", dep.Total)
	}
	if dep.Withdrawn != "250000" {
		t.Errorf("Withdrawn = %q, want 250000", dep.Withdrawn)
	}

	if got.Code != "uos.timelock" || got.Scope != "uos.timelock" || got.Table != "balance" {
		t.Errorf("request = %+v", got)
	}
	if got.LowerBound != "uosaccount12" || got.UpperBound != "uosaccount12" {
		t.Errorf("bounds = %q..%q, want pinned to account", got.LowerBound, got.UpperBound)
	}
	if got.Limit != 1 {
		t.Errorf("Limit = %d, want 1", got.Limit)
	}
}

func TestFetchDepositNoRow(t *testing.T) {
	server := tableServer(t, nil)
	defer server.Close()

	client := NewClient(server.URL, 1, 10*time.Millisecond)
	dep, err := client.FetchDeposit(context.Background(), "uos.actlock", "uosaccount12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dep != nil {
		t.Errorf("deposit = %+v, want nil", *dep)
	}
}

func TestFetchEmission(t *testing.T) {
	server := tableServer(t, map[string]string{"uos.calcs/emission": `{"total": 52000}`})
	defer server.Close()

	client := NewClient(server.URL, 1, 10*time.Millisecond)
	em, err := client.FetchEmission(context.Background(), "uos.calcs", "emission", "uosaccount12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if em == nil || em.Total != "52000" {
		t.Errorf("emission = %+v, want total 52000", em)
	}
}

func TestFetchProfile(t *testing.T) {
	profile := `{"usersSources":[{"sourceUrl":"https://t.me/alice"},{"sourceUrl":"https://github.com/alice"}]}`
	row, _ := json.Marshal(profileRow{ProfileJSON: profile})
	server := tableServer(t, map[string]string{"uaccountinfo/accprofile": string(row)})
	defer server.Close()

	client := NewClient(server.URL, 1, 10*time.Millisecond)
	p, err := client.FetchProfile(context.Background(), "uosaccount12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(p.Sources))
	}
	if p.Sources[0].SourceURL != "https://t.me/alice" {
		t.Errorf("Sources[0] = %q", p.Sources[0].SourceURL)
	}
}

func TestFetchProfileMissing(t *testing.T) {
	server := tableServer(t, nil)
	defer server.Close()

	client := NewClient(server.URL, 1, 10*time.Millisecond)
	_, err := client.FetchProfile(context.Background(), "uosaccount12")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSourceUsesConfiguredContracts(t *testing.T) {
	server := tableServer(t, map[string]string{
		"lock.time/balance":  `{"deposit":"100.0000 UOS","withdrawal":"0.0000 UOS"}`,
		"lock.actv/balance":  `{"deposit":20000,"withdrawal":0}`,
		"emit.calcs/emitted": `{"total":"3.5000 UOS"}`,
	})
	defer server.Close()

	src := NewSource(NewClient(server.URL, 1, 10*time.Millisecond), Contracts{
		TimeLock:      "lock.time",
		ActivityLock:  "lock.actv",
		Emission:      "emit.calcs",
		EmissionTable: "emitted",
	})
	ctx := context.Background()

	tl, err := src.FetchTimeLock(ctx, "uosaccount12")
	if err != nil || tl == nil || tl.Total != "100.0000 UOS" {
		t.Errorf("FetchTimeLock() = %+v, %v", tl, err)
	}
	al, err := src.FetchActivityLock(ctx, "uosaccount12")
	if err != nil || al == nil || al.Total != "20000" || al.Withdrawn != "0" {
		t.Errorf("FetchActivityLock() = %+v, %v", al, err)
	}
	em, err := src.FetchEmission(ctx, "uosaccount12")
	if err != nil || em == nil || em.Total != "3.5000 UOS" {
		t.Errorf("FetchEmission() = %+v, %v", em, err)
	}
}
