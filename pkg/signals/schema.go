package signals

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// schemaBlocks counts JSON-LD script elements and collects the distinct @type
// values of the blocks that decode. Invalid JSON is still counted.
func schemaBlocks(doc *goquery.Document) (int, []string) {
	count := 0
	types := map[string]struct{}{}

	doc.Find("script[type]").Each(func(_ int, s *goquery.Selection) {
		t, _ := s.Attr("type")
		if !strings.EqualFold(strings.TrimSpace(t), jsonLDType) {
			return
		}
		count++

		var payload any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &payload); err != nil {
			return
		}
		collectTypes(payload, types)
	})

	if len(types) == 0 {
		return count, nil
	}
	out := make([]string, 0, len(types))
	for t := range types {
		out = append(out, t)
	}
	sort.Strings(out)
	return count, out
}

// collectTypes walks arrays, objects and @graph containers for @type values.
func collectTypes(v any, into map[string]struct{}) {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			collectTypes(item, into)
		}
	case map[string]any:
		switch t := node["@type"].(type) {
		case string:
			into[t] = struct{}{}
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					into[s] = struct{}{}
				}
			}
		}
		if graph, ok := node["@graph"]; ok {
			collectTypes(graph, into)
		}
	}
}
