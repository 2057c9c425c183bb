// Package dnspreview looks up the TXT records a domain currently publishes so
// the dashboard can show them immediately. The preview is display-only and
// non-authoritative: validation verdicts always come from the backend.
package dnspreview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"

	"github.com/sendwatch/mailauth/internal/metrics"
)

type Resolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

type Config struct {
	Nameserver string
	Timeout    time.Duration
}

type Previewer struct {
	resolver Resolver
	logger   *zap.Logger
	metrics  *metrics.Collector
}

func NewPreviewer(cfg Config, logger *zap.Logger, collector *metrics.Collector) *Previewer {
	nameserver := cfg.Nameserver
	if nameserver == "" {
		nameserver = "8.8.8.8:53"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Previewer{
		resolver: &txtResolver{
			client: &dns.Client{Timeout: timeout},
			server: nameserver,
		},
		logger:  logger,
		metrics: collector,
	}
}

// NewPreviewerWithResolver injects a resolver, used by tests.
func NewPreviewerWithResolver(resolver Resolver, logger *zap.Logger, collector *metrics.Collector) *Previewer {
	return &Previewer{resolver: resolver, logger: logger, metrics: collector}
}

type Preview struct {
	Domain string        `json:"domain"`
	SPF    RecordPreview `json:"spf"`
	DKIM   RecordPreview `json:"dkim"`
	DMARC  RecordPreview `json:"dmarc"`
}

type RecordPreview struct {
	Name   string `json:"name"`
	Found  bool   `json:"found"`
	Record string `json:"record,omitempty"`
}

// Preview fetches the published SPF, DKIM and DMARC TXT records. Lookup
// failures leave the record marked not-found; the preview itself never fails.
func (p *Previewer) Preview(ctx context.Context, domain, dkimSelector string) *Preview {
	start := time.Now()

	if dkimSelector == "" {
		dkimSelector = "default"
	}

	preview := &Preview{Domain: domain}
	var lookupErr error
	preview.SPF, lookupErr = p.lookup(ctx, domain, "v=spf1", lookupErr)
	preview.DKIM, lookupErr = p.lookup(ctx, fmt.Sprintf("%s._domainkey.%s", dkimSelector, domain), "v=DKIM1", lookupErr)
	preview.DMARC, lookupErr = p.lookup(ctx, "_dmarc."+domain, "v=DMARC1", lookupErr)

	if p.metrics != nil {
		p.metrics.RecordDNSPreview(lookupErr, time.Since(start))
	}

	return preview
}

// lookup carries the first resolver error through so the preview can be
// recorded as a failure even though the response degrades to not-found.
func (p *Previewer) lookup(ctx context.Context, name, prefix string, prevErr error) (RecordPreview, error) {
	result := RecordPreview{Name: name}

	records, err := p.resolver.LookupTXT(ctx, name)
	if err != nil {
		p.logger.Debug("DNS preview lookup failed",
			zap.String("name", name),
			zap.Error(err),
		)
		if prevErr == nil {
			prevErr = err
		}
		return result, prevErr
	}

	for _, record := range records {
		if strings.HasPrefix(strings.TrimSpace(record), prefix) {
			result.Found = true
			result.Record = record
			return result, prevErr
		}
	}

	return result, prevErr
}

type txtResolver struct {
	client *dns.Client
	server string
}

func (r *txtResolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeTXT)

	resp, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return nil, err
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("dns query for %s failed with code %s", name, dns.RcodeToString[resp.Rcode])
	}

	var records []string
	for _, ans := range resp.Answer {
		if txt, ok := ans.(*dns.TXT); ok {
			records = append(records, strings.Join(txt.Txt, ""))
		}
	}

	return records, nil
}
