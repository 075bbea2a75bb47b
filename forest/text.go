package forest

import "strings"

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// NormalizeText keeps one utterance per cell by turning every line break
// into a single space.
func NormalizeText(s string) string {
	return lineBreaks.Replace(s)
}
