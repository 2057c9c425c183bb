package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/sendwatch/mailauth/internal/core"
)

const DefaultDKIMSelector = "default"

type CreateDomainRequest struct {
	DomainName string `json:"domain_name"`
	IsPrimary  bool   `json:"is_primary"`
}

type UpdateDomainRequest struct {
	DomainName *string `json:"domain_name,omitempty"`
	IsPrimary  *bool   `json:"is_primary,omitempty"`
}

func (u *UserClient) ListDomains(ctx context.Context) ([]core.Domain, error) {
	var domains []core.Domain
	err := u.client.do(ctx, "list_domains", u.email, http.MethodGet, "/domains", nil, &domains)
	if err != nil {
		return nil, err
	}
	return domains, nil
}

func (u *UserClient) CreateDomain(ctx context.Context, req CreateDomainRequest) (*core.Domain, error) {
	var domain core.Domain
	err := u.client.do(ctx, "create_domain", u.email, http.MethodPost, "/domains", req, &domain)
	if err != nil {
		return nil, err
	}
	return &domain, nil
}

func (u *UserClient) UpdateDomain(ctx context.Context, id uuid.UUID, req UpdateDomainRequest) (*core.Domain, error) {
	var domain core.Domain
	path := "/domains/" + id.String()
	err := u.client.do(ctx, "update_domain", u.email, http.MethodPut, path, req, &domain)
	if err != nil {
		return nil, err
	}
	return &domain, nil
}

func (u *UserClient) DeleteDomain(ctx context.Context, id uuid.UUID) error {
	path := "/domains/" + id.String()
	return u.client.do(ctx, "delete_domain", u.email, http.MethodDelete, path, nil, nil)
}

// CheckAuth asks the backend to re-verify the named mechanisms. An empty list
// re-verifies all of them.
func (u *UserClient) CheckAuth(ctx context.Context, id uuid.UUID, types []core.CheckType) (*core.Domain, error) {
	body := struct {
		CheckTypes []core.CheckType `json:"check_types,omitempty"`
	}{CheckTypes: types}

	var domain core.Domain
	path := fmt.Sprintf("/domains/%s/check-auth", id)
	err := u.client.do(ctx, "check_auth", u.email, http.MethodPost, path, body, &domain)
	if err != nil {
		return nil, err
	}
	return &domain, nil
}

// CheckNow blocks until the backend has a fresh verification result. It runs
// under its own, longer deadline since the underlying DNS work is slow.
func (u *UserClient) CheckNow(ctx context.Context, id uuid.UUID) (*core.Domain, error) {
	var domain core.Domain
	path := fmt.Sprintf("/domains/%s/check-now", id)
	err := u.client.doWithTimeout(ctx, u.client.checkNowTimeout, "check_now", u.email, http.MethodPost, path, nil, &domain)
	if err != nil {
		return nil, err
	}
	return &domain, nil
}

// CheckAllDomains is fire and forget; the backend queues a re-check per
// domain and individual completion is not awaited.
func (u *UserClient) CheckAllDomains(ctx context.Context) (*core.BatchCheckResult, error) {
	var result core.BatchCheckResult
	err := u.client.do(ctx, "check_all_domains", u.email, http.MethodPost, "/domains/check-all", nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateDKIMKeys is idempotent per selector: repeating the call rotates the
// key pair instead of appending one. The returned DNS record is authoritative.
func (u *UserClient) GenerateDKIMKeys(ctx context.Context, id uuid.UUID, selector string) (*core.DKIMKeyResult, error) {
	if selector == "" {
		selector = DefaultDKIMSelector
	}

	var result core.DKIMKeyResult
	path := fmt.Sprintf("/domains/%s/generate-dkim?selector=%s", id, url.QueryEscape(selector))
	err := u.client.do(ctx, "generate_dkim", u.email, http.MethodPost, path, nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (u *UserClient) GetConfiguration(ctx context.Context, id uuid.UUID) (*core.Configuration, error) {
	var cfg core.Configuration
	path := fmt.Sprintf("/domains/%s/configuration", id)
	err := u.client.do(ctx, "get_configuration", u.email, http.MethodGet, path, nil, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (u *UserClient) GetAlerts(ctx context.Context, id uuid.UUID) ([]core.Alert, error) {
	var alerts []core.Alert
	path := fmt.Sprintf("/domains/%s/alerts", id)
	err := u.client.do(ctx, "get_alerts", u.email, http.MethodGet, path, nil, &alerts)
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (u *UserClient) ResolveAlert(ctx context.Context, id, alertID uuid.UUID) error {
	path := fmt.Sprintf("/domains/%s/alerts/%s/resolve", id, alertID)
	return u.client.do(ctx, "resolve_alert", u.email, http.MethodPost, path, nil, nil)
}
