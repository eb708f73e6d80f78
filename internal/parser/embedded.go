package parser

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stateMarkers are the window globals marketplaces hydrate listing pages
// with. The JSON assigned to them survives markup redesigns that break
// selectors.
var stateMarkers = []string{
	"__SEARCH_APP_INITIAL_STATE__",
	"__PRODUCT_DETAIL_APP_INITIAL_STATE__",
	"__INITIAL_STATE__",
}

// embeddedStateItems extracts raw product items from page-state JSON embedded
// in script tags. Returns nil when the page carries no recognizable state.
func embeddedStateItems(body []byte) []map[string]any {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var items []map[string]any
	doc.Find("script").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := sel.Text()
		for _, marker := range stateMarkers {
			idx := strings.Index(text, marker)
			if idx < 0 {
				continue
			}
			blob := jsonObjectAfter(text[idx+len(marker):])
			if blob == "" {
				continue
			}
			var state map[string]any
			if err := json.Unmarshal([]byte(blob), &state); err != nil {
				continue
			}
			items = itemArray(state)
			if items != nil {
				return false // stop at the first usable state blob
			}
		}
		return true
	})
	return items
}

// jsonObjectAfter returns the first balanced {...} object following an
// assignment ("= {...};"), tracking strings so braces inside values don't
// break the balance.
func jsonObjectAfter(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
			// skip structural chars inside strings
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
