package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sendwatch/mailauth/internal/authstatus"
	"github.com/sendwatch/mailauth/internal/core"
)

// fakeBackend is a minimal stateful stand-in for the platform backend.
type fakeBackend struct {
	mu      sync.Mutex
	domains map[uuid.UUID]*core.Domain

	lastAuth   string
	lastMethod string
	lastPath   string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{domains: make(map[uuid.UUID]*core.Domain)}
}

func (f *fakeBackend) addDomain(d *core.Domain) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.domains[d.ID] = d
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /domains", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		defer f.mu.Unlock()
		out := make([]core.Domain, 0, len(f.domains))
		for _, d := range f.domains {
			out = append(out, *d)
		}
		json.NewEncoder(w).Encode(out)
	})

	mux.HandleFunc("POST /domains", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var req CreateDomainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DomainName == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "domain_name is required"})
			return
		}
		d := &core.Domain{ID: uuid.New(), DomainName: req.DomainName, IsPrimary: req.IsPrimary}
		f.addDomain(d)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(d)
	})

	mux.HandleFunc("DELETE /domains/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		id, _ := uuid.Parse(r.PathValue("id"))
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.domains[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "domain not found"})
			return
		}
		delete(f.domains, id)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /domains/{id}/check-now", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		id, _ := uuid.Parse(r.PathValue("id"))
		f.mu.Lock()
		defer f.mu.Unlock()
		d, ok := f.domains[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "domain not found"})
			return
		}
		json.NewEncoder(w).Encode(d)
	})

	mux.HandleFunc("POST /domains/{id}/alerts/{alertID}/resolve", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		id, _ := uuid.Parse(r.PathValue("id"))
		alertID, _ := uuid.Parse(r.PathValue("alertID"))
		f.mu.Lock()
		defer f.mu.Unlock()
		d, ok := f.domains[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "domain not found"})
			return
		}
		for i := range d.Alerts {
			if d.Alerts[i].ID == alertID {
				d.Alerts[i].IsResolved = true
				w.WriteHeader(http.StatusOK)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "alert not found"})
	})

	mux.HandleFunc("POST /domains/{id}/generate-dkim", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		selector := r.URL.Query().Get("selector")
		json.NewEncoder(w).Encode(core.DKIMKeyResult{
			Selector:  selector,
			DNSRecord: selector + "._domainkey IN TXT \"v=DKIM1; k=rsa; p=MIIB...\"",
		})
	})

	mux.HandleFunc("GET /api/anti-spam/dashboard", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		json.NewEncoder(w).Encode(core.AntiSpamDashboard{
			Success:    true,
			Limits:     core.SendingLimits{DailyLimit: 1000, DailySent: 120},
			Reputation: core.SenderReputation{Score: 87.5, WarmupStatus: "active"},
		})
	})

	return mux
}

func (f *fakeBackend) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAuth = r.Header.Get("Authorization")
	f.lastMethod = r.Method
	f.lastPath = r.URL.Path
}

func newTestClient(t *testing.T, backend *fakeBackend) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)
	client := NewClient(Config{BaseURL: srv.URL}, zap.NewNop(), nil)
	return client, srv
}

func TestListDomainsSendsBearerEmail(t *testing.T) {
	backend := newFakeBackend()
	client, _ := newTestClient(t, backend)

	uc := client.ForUser("alice@example.com")
	if _, err := uc.ListDomains(context.Background()); err != nil {
		t.Fatalf("ListDomains: %v", err)
	}
	if backend.lastAuth != "Bearer alice@example.com" {
		t.Errorf("Authorization = %q, want bearer email", backend.lastAuth)
	}
}

func TestCreateDomainValidationError(t *testing.T) {
	backend := newFakeBackend()
	client, _ := newTestClient(t, backend)

	uc := client.ForUser("alice@example.com")
	_, err := uc.CreateDomain(context.Background(), CreateDomainRequest{DomainName: ""})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", statusErr.StatusCode)
	}
	if statusErr.Message != "domain_name is required" {
		t.Errorf("server message lost: %q", statusErr.Message)
	}
}

func TestDeleteDomainNotFound(t *testing.T) {
	backend := newFakeBackend()
	client, _ := newTestClient(t, backend)

	uc := client.ForUser("alice@example.com")
	err := uc.DeleteDomain(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteDomainSuccess(t *testing.T) {
	backend := newFakeBackend()
	d := &core.Domain{ID: uuid.New(), DomainName: "mail.example.com"}
	backend.addDomain(d)
	client, _ := newTestClient(t, backend)

	uc := client.ForUser("alice@example.com")
	if err := uc.DeleteDomain(context.Background(), d.ID); err != nil {
		t.Fatalf("DeleteDomain: %v", err)
	}
	domains, err := uc.ListDomains(context.Background())
	if err != nil {
		t.Fatalf("ListDomains: %v", err)
	}
	if len(domains) != 0 {
		t.Errorf("domain still present after delete: %v", domains)
	}
}

func TestGenerateDKIMKeysDefaultsSelector(t *testing.T) {
	backend := newFakeBackend()
	client, _ := newTestClient(t, backend)

	uc := client.ForUser("alice@example.com")
	result, err := uc.GenerateDKIMKeys(context.Background(), uuid.New(), "")
	if err != nil {
		t.Fatalf("GenerateDKIMKeys: %v", err)
	}
	if result.Selector != DefaultDKIMSelector {
		t.Errorf("selector = %q, want %q", result.Selector, DefaultDKIMSelector)
	}
	if result.DNSRecord == "" {
		t.Error("expected DNS record in result")
	}
}

func TestNetworkErrorClassification(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, zap.NewNop(), nil)
	uc := client.ForUser("alice@example.com")

	_, err := uc.ListDomains(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestTimeoutClassification(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()

	client := NewClient(Config{BaseURL: slow.URL, Timeout: 20 * time.Millisecond}, zap.NewNop(), nil)
	uc := client.ForUser("alice@example.com")

	_, err := uc.ListDomains(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

// A check-now slower than the general timeout must still complete inside the
// dedicated check-now deadline; ordinary calls keep the shorter one.
func TestCheckNowUsesItsOwnDeadline(t *testing.T) {
	domainID := uuid.New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /domains", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		json.NewEncoder(w).Encode([]core.Domain{})
	})
	mux.HandleFunc("POST /domains/{id}/check-now", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		json.NewEncoder(w).Encode(core.Domain{ID: domainID, DomainName: "mail.example.com"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(Config{
		BaseURL:         srv.URL,
		Timeout:         30 * time.Millisecond,
		CheckNowTimeout: 5 * time.Second,
	}, zap.NewNop(), nil)
	uc := client.ForUser("alice@example.com")

	if _, err := uc.ListDomains(context.Background()); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout for slow list, got %v", err)
	}

	domain, err := uc.CheckNow(context.Background(), domainID)
	if err != nil {
		t.Fatalf("CheckNow must outlive the general timeout: %v", err)
	}
	if domain.ID != domainID {
		t.Errorf("unexpected domain: %+v", domain)
	}
}

func TestGetAntiSpamDashboard(t *testing.T) {
	backend := newFakeBackend()
	client, _ := newTestClient(t, backend)

	uc := client.ForUser("alice@example.com")
	dash, err := uc.GetAntiSpamDashboard(context.Background())
	if err != nil {
		t.Fatalf("GetAntiSpamDashboard: %v", err)
	}
	if dash.Reputation.WarmupStatus != "active" {
		t.Errorf("unexpected snapshot: %+v", dash)
	}
}

// A 200 with success=false in the body is still a failed fetch.
func TestGetAntiSpamDashboardSuccessFalse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/anti-spam/dashboard", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(core.AntiSpamDashboard{Success: false})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zap.NewNop(), nil)
	uc := client.ForUser("alice@example.com")

	dash, err := uc.GetAntiSpamDashboard(context.Background())
	if dash != nil {
		t.Errorf("expected nil dashboard, got %+v", dash)
	}
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
	if Kind(err) != "upstream" {
		t.Errorf("Kind(err) = %q, want %q", Kind(err), "upstream")
	}
}

// Resolving an alert and refetching must drop it from the unresolved count on
// the next summary derivation.
func TestResolveAlertRoundTrip(t *testing.T) {
	backend := newFakeBackend()
	alertID := uuid.New()
	domainID := uuid.New()
	backend.addDomain(&core.Domain{
		ID:         domainID,
		DomainName: "mail.example.com",
		AuthChecks: []core.AuthCheck{{CheckType: core.CheckSPF, IsValid: true}},
		Alerts: []core.Alert{
			{ID: alertID, DomainID: domainID, Level: core.AlertError, IsResolved: false},
		},
	})
	client, _ := newTestClient(t, backend)
	uc := client.ForUser("alice@example.com")
	ctx := context.Background()

	domains, err := uc.ListDomains(ctx)
	if err != nil {
		t.Fatalf("ListDomains: %v", err)
	}
	before := authstatus.Summarize(&domains[0])
	if before.UnresolvedAlerts != 1 || before.Status != core.StatusError {
		t.Fatalf("precondition failed: %+v", before)
	}

	if err := uc.ResolveAlert(ctx, domainID, alertID); err != nil {
		t.Fatalf("ResolveAlert: %v", err)
	}

	domains, err = uc.ListDomains(ctx)
	if err != nil {
		t.Fatalf("ListDomains after resolve: %v", err)
	}
	after := authstatus.Summarize(&domains[0])
	if after.UnresolvedAlerts != 0 {
		t.Errorf("unresolved count = %d after resolve", after.UnresolvedAlerts)
	}
	if after.Status != core.StatusValid {
		t.Errorf("status = %s after resolve, want valid", after.Status)
	}
}
