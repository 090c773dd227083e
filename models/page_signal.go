package models

// PageSignal is the fixed-shape record extracted from one successfully fetched page.
// Pointer fields are absent (nil) when the page has no such element, which is
// distinct from an element that is present but empty.
type PageSignal struct {
	URL                string  `json:"url" yaml:"url"`
	Title              *string `json:"title,omitempty" yaml:"title,omitempty"`
	MetaDescription    *string `json:"meta_description,omitempty" yaml:"meta_description,omitempty"`
	H1                 *string `json:"h1,omitempty" yaml:"h1,omitempty"`
	HasFAQLikeElements bool    `json:"has_faq_like_elements" yaml:"has_faq_like_elements"`
	SchemaBlockCount   int     `json:"schema_block_count" yaml:"schema_block_count"`
	WordCount          *int    `json:"word_count,omitempty" yaml:"word_count,omitempty"`
	TextSnippet        *string `json:"text_snippet,omitempty" yaml:"text_snippet,omitempty"`

	// Enrichment
	SchemaTypes   []string `json:"schema_types,omitempty" yaml:"schema_types,omitempty"`
	Language      *string  `json:"language,omitempty" yaml:"language,omitempty"`
	ReadableChars *int     `json:"readable_chars,omitempty" yaml:"readable_chars,omitempty"`
	SiteName      *string  `json:"site_name,omitempty" yaml:"site_name,omitempty"`

	// VisibleText is kept for site-wide keyword analysis and never serialized.
	VisibleText string `json:"-" yaml:"-"`
}

// HasMetaDescription reports whether a non-empty meta description was found.
func (p PageSignal) HasMetaDescription() bool {
	return p.MetaDescription != nil && *p.MetaDescription != ""
}

// StringOr dereferences s, returning fallback when s is nil.
func StringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
