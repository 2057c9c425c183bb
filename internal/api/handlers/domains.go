package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sendwatch/mailauth/internal/authstatus"
	"github.com/sendwatch/mailauth/internal/core"
	"github.com/sendwatch/mailauth/internal/gateway"
	"github.com/sendwatch/mailauth/internal/storage/postgres"
)

// DomainView is a domain snapshot enriched with derived state. Summary and
// recommendations are recomputed on every request from the freshly fetched
// snapshot, never cached.
type DomainView struct {
	core.Domain
	Summary         core.StatusSummary    `json:"summary"`
	Recommendations []core.Recommendation `json:"recommendations"`
}

func newDomainView(domain core.Domain) DomainView {
	return DomainView{
		Domain:          domain,
		Summary:         authstatus.Summarize(&domain),
		Recommendations: authstatus.Recommend(&domain),
	}
}

func (h *Handler) ListDomains(c *gin.Context) {
	domains, err := h.user(c).ListDomains(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to list domains")
		return
	}

	views := make([]DomainView, 0, len(domains))
	statusCounts := make(map[core.DomainStatus]int)
	for _, domain := range domains {
		view := newDomainView(domain)
		statusCounts[view.Summary.Status]++
		views = append(views, view)
	}

	if h.metrics != nil {
		h.metrics.RecordDomainStatuses(statusCounts)
	}

	c.JSON(http.StatusOK, gin.H{
		"domains": views,
		"count":   len(views),
	})
}

type CreateDomainRequest struct {
	DomainName string `json:"domain_name" binding:"required,hostname"`
	IsPrimary  bool   `json:"is_primary"`
}

func (h *Handler) CreateDomain(c *gin.Context) {
	var req CreateDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	domain, err := h.user(c).CreateDomain(c.Request.Context(), gateway.CreateDomainRequest{
		DomainName: req.DomainName,
		IsPrimary:  req.IsPrimary,
	})
	if err != nil {
		h.fail(c, err, "Failed to create domain")
		return
	}

	h.recordActivity(c, postgres.ActionCreateDomain, &domain.ID, domain.DomainName)

	c.JSON(http.StatusCreated, newDomainView(*domain))
}

type UpdateDomainRequest struct {
	DomainName *string `json:"domain_name,omitempty"`
	IsPrimary  *bool   `json:"is_primary,omitempty"`
}

func (h *Handler) UpdateDomain(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain id"})
		return
	}

	var req UpdateDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	domain, err := h.user(c).UpdateDomain(c.Request.Context(), id, gateway.UpdateDomainRequest{
		DomainName: req.DomainName,
		IsPrimary:  req.IsPrimary,
	})
	if err != nil {
		h.fail(c, err, "Failed to update domain")
		return
	}

	h.recordActivity(c, postgres.ActionUpdateDomain, &domain.ID, domain.DomainName)

	c.JSON(http.StatusOK, newDomainView(*domain))
}

func (h *Handler) DeleteDomain(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain id"})
		return
	}

	if err := h.user(c).DeleteDomain(c.Request.Context(), id); err != nil {
		h.fail(c, err, "Failed to delete domain")
		return
	}

	h.recordActivity(c, postgres.ActionDeleteDomain, &id, "")

	c.JSON(http.StatusNoContent, nil)
}

type CheckAuthRequest struct {
	CheckTypes []core.CheckType `json:"check_types,omitempty"`
}

func (h *Handler) CheckAuth(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain id"})
		return
	}

	var req CheckAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	domain, err := h.user(c).CheckAuth(c.Request.Context(), id, req.CheckTypes)
	if err != nil {
		h.fail(c, err, "Failed to run authentication checks")
		return
	}

	h.recordActivity(c, postgres.ActionCheckAuth, &id, "")

	c.JSON(http.StatusOK, newDomainView(*domain))
}

// CheckNow blocks until the backend has re-verified the domain, so the
// response already carries the fresh derived state.
func (h *Handler) CheckNow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain id"})
		return
	}

	domain, err := h.user(c).CheckNow(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to re-check domain")
		return
	}

	h.recordActivity(c, postgres.ActionCheckNow, &id, "")

	c.JSON(http.StatusOK, newDomainView(*domain))
}

func (h *Handler) CheckAllDomains(c *gin.Context) {
	result, err := h.user(c).CheckAllDomains(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to queue checks")
		return
	}

	h.recordActivity(c, postgres.ActionCheckAll, nil, "")

	c.JSON(http.StatusAccepted, result)
}

func (h *Handler) DNSPreview(c *gin.Context) {
	if h.previewer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "DNS preview not available"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain id"})
		return
	}

	// The preview needs the domain name and selector from the snapshot.
	domains, err := h.user(c).ListDomains(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to load domain")
		return
	}

	for _, domain := range domains {
		if domain.ID == id {
			selector := ""
			if domain.DKIMSelector != nil {
				selector = *domain.DKIMSelector
			}
			preview := h.previewer.Preview(c.Request.Context(), domain.DomainName, selector)
			c.JSON(http.StatusOK, preview)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
}
