package parser

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cast"

	"github.com/pazarlab/tezgah/internal/types"
)

// Reviews extracts review candidates from a raw review payload. Known
// containers: a top-level array, {"reviews": [...]},
// {"result": {"productReviews": {"content": [...]}}}.
func (p *Parser) Reviews(body []byte) ([]types.CandidateReview, error) {
	if len(body) == 0 {
		return nil, &types.ParseError{Err: types.ErrEmptyResponse}
	}

	items, err := reviewItems(body)
	if err != nil {
		return nil, &types.ParseError{Err: err}
	}

	reviews := make([]types.CandidateReview, 0, len(items))
	for _, item := range items {
		r, ok := extractReview(item)
		if !ok {
			continue
		}
		reviews = append(reviews, r)
	}

	p.logger.Debug("reviews extracted", "count", len(reviews))
	return reviews, nil
}

// ExtractReviewsFromItem pulls inline reviews off a raw product item, for
// detail payloads that carry comments next to the product fields.
func ExtractReviewsFromItem(raw map[string]any) []types.CandidateReview {
	if inner, ok := raw["product"].(map[string]any); ok {
		if revs := ExtractReviewsFromItem(inner); len(revs) > 0 {
			return revs
		}
	}
	for _, key := range []string{"reviews", "comments", "productReviews"} {
		if arr, ok := raw[key].([]any); ok {
			out := make([]types.CandidateReview, 0, len(arr))
			for _, v := range arr {
				if m, ok := v.(map[string]any); ok {
					if r, ok := extractReview(m); ok {
						out = append(out, r)
					}
				}
			}
			return out
		}
	}
	return nil
}

// extractReview reads one raw review item with the same loose-shape
// discipline as products: try known keys in order, zero-value the rest.
// A review without text is unusable and reports false.
func extractReview(raw map[string]any) (types.CandidateReview, bool) {
	r := types.CandidateReview{
		Text:         firstString(raw, "comment", "text", "reviewText", "review"),
		RawDate:      firstString(raw, "commentDateISOtype", "date", "reviewDate", "createdAt"),
		Rating:       cast.ToInt(firstValue(raw, "rate", "rating", "score", "star")),
		HelpfulCount: cast.ToInt(firstValue(raw, "helpfulCount", "likes", "thumbsUp")),
	}

	r.ReviewerName = firstString(raw, "userFullName", "reviewerName", "author")
	if r.ReviewerName == "" {
		if user, ok := raw["user"].(map[string]any); ok {
			r.ReviewerName = firstString(user, "fullName", "name", "username")
		}
	}
	if r.ReviewerName == "" {
		r.ReviewerName = "Anonim"
	}

	if strings.TrimSpace(r.Text) == "" {
		return types.CandidateReview{}, false
	}
	r.Text = strings.TrimSpace(r.Text)
	return r, true
}

// reviewItems locates the review array inside a JSON payload.
func reviewItems(body []byte) ([]map[string]any, error) {
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
	if arr := reviewArray(obj); arr != nil {
		return arr, nil
	}
	return nil, types.ErrNoRecord
}

func reviewArray(obj map[string]any) []map[string]any {
	for _, key := range []string{"reviews", "comments", "content"} {
		if arr, ok := obj[key].([]any); ok {
			return toMaps(arr)
		}
	}
	for _, key := range []string{"result", "productReviews"} {
		if inner, ok := obj[key].(map[string]any); ok {
			if arr := reviewArray(inner); arr != nil {
				return arr
			}
		}
	}
	return nil
}
