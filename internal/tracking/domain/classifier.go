package domain

import "strings"

// DefaultCriticalKeywords are the carrier phrases that need an operator's attention.
var DefaultCriticalKeywords = []string{
	"objeto devolvido",
	"endereço incorreto",
	"objeto aguardando retirada",
	"tentativa de entrega",
	"objeto roubado",
	"objeto extraviado",
	"recusado",
	"entrega não efetuada",
}

// DefaultDeliveredMarker is the substring carried by delivered statuses.
const DefaultDeliveredMarker = "entregue"

// Classification is the outcome of classifying one status string.
type Classification struct {
	IsCritical  bool
	IsDelivered bool
}

// Classifier maps free-text carrier statuses to critical/delivered flags using
// case-insensitive substring matching. It is immutable and safe for concurrent use.
type Classifier struct {
	keywords        []string
	deliveredMarker string
}

// NewClassifier builds a Classifier. Blank keywords are ignored; an empty keyword list
// falls back to DefaultCriticalKeywords and an empty marker to DefaultDeliveredMarker.
func NewClassifier(keywords []string, deliveredMarker string) *Classifier {
	normalized := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if k := strings.ToLower(strings.TrimSpace(keyword)); k != "" {
			normalized = append(normalized, k)
		}
	}
	if len(normalized) == 0 {
		for _, keyword := range DefaultCriticalKeywords {
			normalized = append(normalized, strings.ToLower(keyword))
		}
	}

	marker := strings.ToLower(strings.TrimSpace(deliveredMarker))
	if marker == "" {
		marker = DefaultDeliveredMarker
	}

	return &Classifier{keywords: normalized, deliveredMarker: marker}
}

// Classify reports whether status is critical and whether it is a delivery.
func (c *Classifier) Classify(status string) Classification {
	if status == "" {
		return Classification{}
	}
	lower := strings.ToLower(status)
	return Classification{
		IsCritical:  c.matchKeyword(lower) != "",
		IsDelivered: strings.Contains(lower, c.deliveredMarker),
	}
}

// MatchedKeyword returns the first configured keyword found in status, or "".
func (c *Classifier) MatchedKeyword(status string) string {
	if status == "" {
		return ""
	}
	return c.matchKeyword(strings.ToLower(status))
}

// IsDelivered reports whether any event carries the delivered marker.
func (c *Classifier) IsDelivered(events []TrackingEvent) bool {
	for _, event := range events {
		if c.Classify(event.Status).IsDelivered {
			return true
		}
	}
	return false
}

func (c *Classifier) matchKeyword(lower string) string {
	for _, keyword := range c.keywords {
		if strings.Contains(lower, keyword) {
			return keyword
		}
	}
	return ""
}
