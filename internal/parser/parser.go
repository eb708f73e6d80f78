// Package parser turns heterogeneous raw payloads — JSON API responses,
// embedded page-state blobs, HTML listing fragments — into loosely-typed
// candidate records. Extraction is best-effort and pure: a record that cannot
// be read is skipped, never an error for the batch.
package parser

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/pazarlab/tezgah/internal/config"
	"github.com/pazarlab/tezgah/internal/types"
)

// Parser extracts candidate records from raw payloads according to a site
// profile.
type Parser struct {
	logger *slog.Logger
}

// New creates a Parser.
func New(logger *slog.Logger) *Parser {
	return &Parser{
		logger: logger.With("component", "parser"),
	}
}

// Products extracts product candidates from one raw payload. JSON profiles
// walk the payload's item containers; HTML profiles extract listing cards by
// selector, falling back to embedded page-state JSON when the page carries it.
func (p *Parser) Products(body []byte, site config.SiteProfile) ([]*types.CandidateProduct, error) {
	if len(body) == 0 {
		return nil, &types.ParseError{Site: site.Name, Err: types.ErrEmptyResponse}
	}

	var candidates []*types.CandidateProduct
	switch site.Kind {
	case "json":
		items, err := itemsFromJSON(body)
		if err != nil {
			return nil, &types.ParseError{Site: site.Name, Err: err}
		}
		candidates = p.fromRawItems(items, site.Name)
	default: // html
		cards, err := p.htmlCards(body, site)
		if err != nil {
			return nil, &types.ParseError{Site: site.Name, Err: err}
		}
		candidates = cards
		if len(candidates) == 0 {
			// Listing markup changes often; the embedded state blob is the
			// sturdier source when present.
			if items := embeddedStateItems(body); len(items) > 0 {
				candidates = p.fromRawItems(items, site.Name)
			}
		}
	}

	p.logger.Debug("products extracted",
		"site", site.Name,
		"kind", site.Kind,
		"count", len(candidates),
	)
	return candidates, nil
}

// fromRawItems runs the shape chain over decoded JSON items. Items without a
// usable name are skipped silently.
func (p *Parser) fromRawItems(items []map[string]any, siteName string) []*types.CandidateProduct {
	candidates := make([]*types.CandidateProduct, 0, len(items))
	for _, item := range items {
		c := ExtractProduct(item)
		if c == nil {
			continue
		}
		c.SiteName = siteName
		c.Reviews = ExtractReviewsFromItem(item)
		candidates = append(candidates, c)
	}
	return candidates
}

// itemsFromJSON locates the item array inside a JSON payload. Known shapes:
// a top-level array, {"products": [...]}, and {"result": {"products": [...]}}.
func itemsFromJSON(body []byte) ([]map[string]any, error) {
	trimmed := strings.TrimSpace(string(body))

	if strings.HasPrefix(trimmed, "[") {
		var arr []map[string]any
		if err := json.Unmarshal(body, &arr); err != nil {
			return nil, err
		}
		return arr, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	if items := itemArray(obj); items != nil {
		return items, nil
	}
	// A single product object is a one-item batch.
	return []map[string]any{obj}, nil
}

// itemArray digs the first known item container out of a payload object.
func itemArray(obj map[string]any) []map[string]any {
	containers := []string{"products", "items", "content"}

	for _, key := range containers {
		if arr, ok := obj[key].([]any); ok {
			return toMaps(arr)
		}
	}
	if result, ok := obj["result"].(map[string]any); ok {
		return itemArray(result)
	}
	return nil
}

func toMaps(arr []any) []map[string]any {
	out := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
