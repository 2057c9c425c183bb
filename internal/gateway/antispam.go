package gateway

import (
	"context"
	"net/http"

	"github.com/sendwatch/mailauth/internal/core"
)

// GetAntiSpamDashboard fetches the limits/reputation snapshot from the
// anti-spam subsystem. This endpoint signals failure through an explicit
// success flag on top of the HTTP status.
func (u *UserClient) GetAntiSpamDashboard(ctx context.Context) (*core.AntiSpamDashboard, error) {
	var dashboard core.AntiSpamDashboard
	err := u.client.do(ctx, "antispam_dashboard", u.email, http.MethodGet, "/api/anti-spam/dashboard", nil, &dashboard)
	if err != nil {
		return nil, err
	}
	if !dashboard.Success {
		return nil, ErrUpstreamFailure
	}
	return &dashboard, nil
}
