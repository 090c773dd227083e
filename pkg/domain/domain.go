// Package domain derives registrable-domain metadata using the public suffix list.
package domain

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/dtnitsch/geo-audit/models"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// HostOf extracts the lowercase ASCII host from a URL or a bare domain string.
func HostOf(target string) (string, error) {
	raw := strings.TrimSpace(target)
	if raw == "" {
		return "", fmt.Errorf("empty domain")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid domain %q: %w", target, err)
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", fmt.Errorf("no host in %q", target)
	}
	if net.ParseIP(host) != nil {
		return host, nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", host, err)
	}
	return ascii, nil
}

// Parse splits a domain or URL into subdomain, registrable domain and public
// suffix, so "shop.example.co.uk" yields ("shop", "example.co.uk", "co.uk").
func Parse(target string) (models.DomainInfo, error) {
	host, err := HostOf(target)
	if err != nil {
		return models.DomainInfo{}, err
	}

	info := models.DomainInfo{Host: host}

	// IP literals have no suffix.
	if net.ParseIP(host) != nil {
		info.RegistrableDomain = host
		info.Kind = KindCommercial
		return info, nil
	}

	info.PublicSuffix, info.ICANN = publicsuffix.PublicSuffix(host)

	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return info, fmt.Errorf("%q has no registrable domain: %w", host, err)
	}
	info.RegistrableDomain = registrable

	if host != registrable {
		info.Subdomain = strings.TrimSuffix(host, "."+registrable)
	}
	info.Kind, info.Country = Classify(info)
	return info, nil
}
