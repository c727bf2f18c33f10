// Package text provides small text processing helpers shared by the
// classifier providers.
package text

// CountRunes counts Unicode characters rather than bytes, so headlines
// containing Telugu or Hindi script report their real length when budgets
// are enforced before sending text to an AI classifier.
//
//	CountRunes("hello")      // 5
//	CountRunes("హైదరాబాద్")   // 9
//	CountRunes("")           // 0
func CountRunes(text string) int {
	return len([]rune(text))
}
