package dns

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
)

// MXVerifier reports whether a mail domain can receive mail.
type MXVerifier interface {
	VerifyMX(ctx context.Context, domain string) error
}

type Resolver struct {
	Servers []string
	Timeout time.Duration
}

func NewResolver() *Resolver {
	return &Resolver{
		Servers: []string{"1.1.1.1:53", "8.8.8.8:53"},
		Timeout: 3 * time.Second,
	}
}

// VerifyMX looks the domain up via public resolvers first, then falls back
// to the system resolver.
func (r *Resolver) VerifyMX(ctx context.Context, domain string) error {
	if strings.TrimSpace(domain) == "" {
		return fmt.Errorf("domain cannot be empty")
	}

	host := dns.Fqdn(domain)
	for _, server := range r.Servers {
		if err := r.queryMX(ctx, host, server); err == nil {
			return nil
		}
	}

	zap.L().Debug("falling back to system resolver", zap.String("domain", domain))
	records, err := net.DefaultResolver.LookupMX(ctx, domain)
	if err != nil {
		return fmt.Errorf("system resolver MX lookup failed: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no MX record found for %s", domain)
	}
	return nil
}

func (r *Resolver) queryMX(ctx context.Context, host, server string) error {
	client := &dns.Client{Timeout: r.Timeout}

	msg := dns.Msg{}
	msg.SetQuestion(host, dns.TypeMX)

	resp, _, err := client.ExchangeContext(ctx, &msg, server)
	if err != nil {
		zap.L().Debug("DNS query failed", zap.String("resolver", server), zap.Error(err))
		return err
	}

	for _, ans := range resp.Answer {
		if _, ok := ans.(*dns.MX); ok {
			return nil
		}
	}
	return fmt.Errorf("no MX record found at resolver %s", server)
}

// DomainOf returns the part after the last @, lowercased.
func DomainOf(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 {
		return ""
	}
	return strings.ToLower(email[i+1:])
}
