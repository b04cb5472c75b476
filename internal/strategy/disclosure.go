package strategy

import (
	"strings"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
)

// DisclosureKeywords flag a filing as relevant to a convertible-bond event
var DisclosureKeywords = []string{"轉換價格", "訂價", "競價拍賣", "生效", "上櫃", "掛牌", "海外", "Euro", "擔保"}

// PreviewRunes bounds the disclosure preview length
const PreviewRunes = 80

// MatchDisclosure returns the preview of the first excerpt containing any
// keyword. Whitespace runs are collapsed before truncation.
func MatchDisclosure(excerpts []string) (string, bool) {
	for _, text := range excerpts {
		if !containsKeyword(text) {
			continue
		}
		return Preview(text), true
	}
	return "", false
}

// Preview collapses whitespace and truncates to PreviewRunes followed by "..."
func Preview(text string) string {
	clean := strings.Join(strings.Fields(text), " ")
	runes := []rune(clean)
	if len(runes) > PreviewRunes {
		runes = runes[:PreviewRunes]
	}
	return string(runes) + "..."
}

// ApplyDisclosure attaches a disclosure preview to sig. A neutral signal is
// escalated to disclosure_published; any other signal keeps its label and
// severity and only carries the preview.
func ApplyDisclosure(sig contracts.Signal, preview string) contracts.Signal {
	if preview == "" {
		return sig
	}
	sig.Disclosure = preview
	if sig.Severity == contracts.SeverityNeutral {
		sig.Label = contracts.LabelDisclosure
		sig.Severity = contracts.SeveritySpecial
	}
	return sig
}

func containsKeyword(text string) bool {
	for _, k := range DisclosureKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
