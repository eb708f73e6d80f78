package parser

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/pazarlab/tezgah/internal/types"
)

// ShapeExtractor attempts to read one known raw-item shape into a candidate.
// Returns false when the item does not carry that shape. Extractors are pure:
// missing fields stay at their zero value rather than failing.
type ShapeExtractor func(raw map[string]any) (*types.CandidateProduct, bool)

// productShapes is the fixed precedence order for raw product items.
// The first shape that yields a usable name wins.
var productShapes = []ShapeExtractor{
	wrappedProductShape,
	nestedPriceShape,
	flatShape,
}

// ExtractProduct runs the shape chain over one raw item. Returns nil when no
// shape produces a usable name — callers skip silently, it is not an error.
func ExtractProduct(raw map[string]any) *types.CandidateProduct {
	if raw == nil {
		return nil
	}
	for _, shape := range productShapes {
		if c, ok := shape(raw); ok && strings.TrimSpace(c.Name) != "" {
			c.Name = strings.TrimSpace(c.Name)
			return c
		}
	}
	return nil
}

// wrappedProductShape handles embedded-state items that wrap the record in a
// "product" key: {"product": {...}}.
func wrappedProductShape(raw map[string]any) (*types.CandidateProduct, bool) {
	inner, ok := raw["product"].(map[string]any)
	if !ok {
		return nil, false
	}
	if c, ok := nestedPriceShape(inner); ok {
		return c, true
	}
	return flatShape(inner)
}

// nestedPriceShape handles API items with a price object:
// {"name": ..., "price": {"sellingPrice": "1.500,00", "originalPrice": ...}}.
func nestedPriceShape(raw map[string]any) (*types.CandidateProduct, bool) {
	priceObj, ok := raw["price"].(map[string]any)
	if !ok {
		return nil, false
	}

	c := baseCandidate(raw)
	c.RawPrice = firstString(priceObj, "sellingPrice", "discountedPrice", "value")
	c.RawOriginalPrice = firstString(priceObj, "originalPrice", "listPrice")
	return c, true
}

// flatShape handles flat items: {"name": ..., "sellingPrice": ..., "brand": ...}.
func flatShape(raw map[string]any) (*types.CandidateProduct, bool) {
	c := baseCandidate(raw)
	c.RawPrice = firstString(raw, "sellingPrice", "discountedPrice", "price", "salePrice")
	c.RawOriginalPrice = firstString(raw, "originalPrice", "listPrice", "marketPrice")
	return c, true
}

// baseCandidate extracts the price-independent fields shared by all shapes.
func baseCandidate(raw map[string]any) *types.CandidateProduct {
	c := &types.CandidateProduct{
		Name:        firstString(raw, "name", "title", "productName"),
		Brand:       brandName(raw["brand"]),
		URL:         firstString(raw, "url", "productUrl", "link"),
		ImageURL:    imageURL(raw),
		Description: firstString(raw, "description", "shortDescription"),
		InStock:     inStock(raw),
	}

	// Rating and review count: flat fields or a ratingScore object.
	if rs, ok := raw["ratingScore"].(map[string]any); ok {
		c.Rating = cast.ToFloat64(rs["averageRating"])
		c.ReviewCount = cast.ToInt(rs["totalCount"])
	} else {
		c.Rating = cast.ToFloat64(firstValue(raw, "rating", "averageRating", "ratingScore"))
		c.ReviewCount = cast.ToInt(firstValue(raw, "ratingCount", "reviewCount", "commentCount", "review_count"))
	}

	return c
}

// brandName reads a brand that may be a plain string or a {"name": ...} object.
func brandName(v any) string {
	switch b := v.(type) {
	case string:
		return strings.TrimSpace(b)
	case map[string]any:
		return strings.TrimSpace(cast.ToString(b["name"]))
	default:
		return ""
	}
}

// imageURL reads the first image from either a flat field or an images array.
func imageURL(raw map[string]any) string {
	if s := firstString(raw, "imageUrl", "image_url", "image"); s != "" {
		return s
	}
	if imgs, ok := raw["images"].([]any); ok && len(imgs) > 0 {
		return cast.ToString(imgs[0])
	}
	return ""
}

// inStock defaults to true; sources only occasionally flag sold-out items.
func inStock(raw map[string]any) bool {
	for _, key := range []string{"inStock", "in_stock", "hasStock"} {
		if v, ok := raw[key]; ok {
			return cast.ToBool(v)
		}
	}
	if v, ok := raw["soldOut"]; ok {
		return !cast.ToBool(v)
	}
	return true
}

// firstString returns the first present, non-empty key coerced to a string.
func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			if s := strings.TrimSpace(cast.ToString(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// firstValue returns the first present, non-nil key as-is.
func firstValue(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
	}
	return nil
}
