package models

// DomainInfo is derived once per run from the target domain.
type DomainInfo struct {
	Host              string `json:"host" yaml:"host"`
	RegistrableDomain string `json:"registrable_domain" yaml:"registrable_domain"`
	Subdomain         string `json:"subdomain" yaml:"subdomain"`
	PublicSuffix      string `json:"public_suffix" yaml:"public_suffix"`
	// ICANN is false for privately managed suffixes such as github.io.
	ICANN bool `json:"icann" yaml:"icann"`
	// Kind is a coarse classification: gov, edu, academic, mobile or commercial.
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Country string `json:"country,omitempty" yaml:"country,omitempty"`
}
