package domain

import (
	"strings"

	"github.com/dtnitsch/geo-audit/models"
)

const (
	KindGov        = "gov"
	KindEdu        = "edu"
	KindAcademic   = "academic"
	KindMobile     = "mobile"
	KindCommercial = "commercial"
)

var academicDomains = map[string]struct{}{
	"arxiv.org":        {},
	"doi.org":          {},
	"nih.gov":          {},
	"researchgate.net": {},
	"academia.edu":     {},
	"biorxiv.org":      {},
	"medrxiv.org":      {},
	"ssrn.com":         {},
}

// Classify derives a coarse kind and a country code from a parsed domain.
// Country comes from the last label of the public suffix when it is a
// two-letter ccTLD; .gov/.edu/.mil imply "us".
func Classify(info models.DomainInfo) (kind, country string) {
	suffix := info.PublicSuffix
	labels := strings.Split(suffix, ".")
	tld := labels[len(labels)-1]

	switch {
	case tld == "gov" || tld == "mil" || hasLabel(labels[:len(labels)-1], "gov"):
		kind = KindGov
	case tld == "edu" || hasLabel(labels[:len(labels)-1], "ac", "edu"):
		kind = KindEdu
	}
	if _, ok := academicDomains[info.RegistrableDomain]; ok {
		kind = KindAcademic
	}
	if kind == "" {
		first, _, _ := strings.Cut(info.Subdomain, ".")
		if info.Subdomain != "" && (first == "m" || first == "mobile") {
			kind = KindMobile
		} else {
			kind = KindCommercial
		}
	}

	switch {
	case len(tld) == 2 && info.ICANN:
		country = tld
	case tld == "gov" || tld == "edu" || tld == "mil":
		country = "us"
	}
	return kind, country
}

func hasLabel(labels []string, want ...string) bool {
	for _, l := range labels {
		for _, w := range want {
			if l == w {
				return true
			}
		}
	}
	return false
}
