package analytics

import (
	"reflect"
	"testing"
)

func TestWordFrequency(t *testing.T) {
	got := WordFrequency("The Widget, the widget! Widgets 2024 a x click here.")
	want := map[string]int{"widget": 2, "widgets": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WordFrequency() = %v, want %v", got, want)
	}
}

func TestStopwords(t *testing.T) {
	if !isStopword("The") {
		t.Error("isStopword(The) = false, want true")
	}
	if isStopword("widget") {
		t.Error("isStopword(widget) = true, want false")
	}
}

func TestReduce(t *testing.T) {
	got := Reduce([]map[string]int{{"a": 1, "b": 2}, {"b": 3, "c": 1}})
	want := map[string]int{"a": 1, "b": 5, "c": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reduce() = %v, want %v", got, want)
	}
}

func TestTopKeywords(t *testing.T) {
	counts := map[string]int{"pricing": 3, "widgets": 5, "api": 3, "docs": 1}

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{name: "top two", n: 2, want: []string{"widgets:5", "api:3"}},
		{name: "ties alphabetical", n: 3, want: []string{"widgets:5", "api:3", "pricing:3"}},
		{name: "more than available", n: 10, want: []string{"widgets:5", "api:3", "pricing:3", "docs:1"}},
		{name: "zero", n: 0, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TopKeywords(counts, tt.n); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopKeywords(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestSiteKeywords(t *testing.T) {
	got := SiteKeywords([]string{"geo audit tools", "audit your site for geo readiness", "geo"}, 2)
	want := []string{"geo:3", "audit:2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SiteKeywords() = %v, want %v", got, want)
	}
}
