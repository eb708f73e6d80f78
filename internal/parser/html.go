package parser

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/spf13/cast"
	"golang.org/x/net/html"

	"github.com/pazarlab/tezgah/internal/config"
	"github.com/pazarlab/tezgah/internal/types"
)

// htmlCards extracts product candidates from listing markup using the site
// profile's selectors. Selectors may carry an "@attr" suffix to read an
// attribute instead of the element text ("a.product@href").
func (p *Parser) htmlCards(body []byte, site config.SiteProfile) ([]*types.CandidateProduct, error) {
	if site.Selectors.Card == "" {
		return nil, nil
	}
	if site.SelectorType == "xpath" {
		return p.xpathCards(body, site)
	}
	return p.cssCards(body, site)
}

// cssCards walks goquery matches of the card selector.
func (p *Parser) cssCards(body []byte, site config.SiteProfile) ([]*types.CandidateProduct, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	sel := site.Selectors
	var candidates []*types.CandidateProduct

	doc.Find(selectorOnly(sel.Card)).Each(func(i int, card *goquery.Selection) {
		c := &types.CandidateProduct{
			Name:             cssValue(card, sel.Name, ""),
			Brand:            cssValue(card, sel.Brand, ""),
			RawPrice:         cssValue(card, sel.Price, ""),
			RawOriginalPrice: cssValue(card, sel.OriginalPrice, ""),
			URL:              resolveURL(site.BaseURL, cssValue(card, sel.URL, "href")),
			ImageURL:         resolveURL(site.BaseURL, cssValue(card, sel.Image, "src")),
			SiteName:         site.Name,
			InStock:          true,
		}
		c.Rating = cast.ToFloat64(strings.ReplaceAll(cssValue(card, sel.Rating, ""), ",", "."))
		c.ReviewCount = cast.ToInt(digitsOnly(cssValue(card, sel.ReviewCount, "")))

		if strings.TrimSpace(c.Name) == "" {
			return // card without a name is no record
		}
		c.Name = strings.TrimSpace(c.Name)
		candidates = append(candidates, c)
	})

	return candidates, nil
}

// xpathCards is the htmlquery twin of cssCards. Field selectors are
// evaluated relative to each card node (".//span[@class='price']").
func (p *Parser) xpathCards(body []byte, site config.SiteProfile) ([]*types.CandidateProduct, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	sel := site.Selectors
	cards, err := htmlquery.QueryAll(doc, selectorOnly(sel.Card))
	if err != nil {
		return nil, err
	}

	var candidates []*types.CandidateProduct
	for _, card := range cards {
		c := &types.CandidateProduct{
			Name:             xpathValue(card, sel.Name, ""),
			Brand:            xpathValue(card, sel.Brand, ""),
			RawPrice:         xpathValue(card, sel.Price, ""),
			RawOriginalPrice: xpathValue(card, sel.OriginalPrice, ""),
			URL:              resolveURL(site.BaseURL, xpathValue(card, sel.URL, "href")),
			ImageURL:         resolveURL(site.BaseURL, xpathValue(card, sel.Image, "src")),
			SiteName:         site.Name,
			InStock:          true,
		}
		c.Rating = cast.ToFloat64(strings.ReplaceAll(xpathValue(card, sel.Rating, ""), ",", "."))
		c.ReviewCount = cast.ToInt(digitsOnly(xpathValue(card, sel.ReviewCount, "")))

		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		c.Name = strings.TrimSpace(c.Name)
		candidates = append(candidates, c)
	}

	return candidates, nil
}

// cssValue evaluates one field selector inside a card. An "@attr" suffix
// reads that attribute; defaultAttr applies when the selector has no suffix
// but the field is attribute-natured (href, src).
func cssValue(card *goquery.Selection, selector, defaultAttr string) string {
	if selector == "" {
		return ""
	}
	sel, attr := splitAttr(selector, defaultAttr)

	match := card.Find(sel).First()
	if match.Length() == 0 {
		return ""
	}
	if attr != "" {
		if v, ok := match.Attr(attr); ok {
			return strings.TrimSpace(v)
		}
		// data-src lazy-loading fallback for images
		if attr == "src" {
			if v, ok := match.Attr("data-src"); ok {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}
	return strings.TrimSpace(match.Text())
}

// xpathValue evaluates one field selector relative to a card node.
func xpathValue(card *html.Node, selector, defaultAttr string) string {
	if selector == "" {
		return ""
	}
	sel, attr := splitAttr(selector, defaultAttr)

	node, err := htmlquery.Query(card, sel)
	if err != nil || node == nil {
		return ""
	}
	if attr != "" {
		return strings.TrimSpace(htmlquery.SelectAttr(node, attr))
	}
	return strings.TrimSpace(htmlquery.InnerText(node))
}

// splitAttr splits a "selector@attr" string. Without a suffix the field
// reads element text, unless the caller supplied a default attribute.
func splitAttr(selector, defaultAttr string) (string, string) {
	if idx := strings.LastIndex(selector, "@"); idx > 0 && !strings.Contains(selector[idx:], "]") {
		return selector[:idx], selector[idx+1:]
	}
	if defaultAttr != "" {
		return selector, defaultAttr
	}
	return selector, ""
}

// selectorOnly strips any "@attr" suffix off a container selector.
func selectorOnly(selector string) string {
	s, _ := splitAttr(selector, "")
	return s
}

// resolveURL resolves a possibly-relative link against the site base URL.
func resolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	if h.IsAbs() || base == "" {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

// digitsOnly keeps the digits of a count string ("(1.234)" -> "1234").
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
