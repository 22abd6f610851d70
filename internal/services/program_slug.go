package services

import (
	"github.com/gosimple/slug"
)

// symbolSeparators keeps slug.Make from spelling symbols out as English
// words, so "Rock & Roll" and "Rock and Roll" stay distinct programs.
var symbolSeparators = map[string]string{
	"_": " ",
	"&": " ",
	"@": " ",
}

// NormalizeProgramSlug maps free-form program names ("Reset 7", "reset_7",
// " RESET-7 ") onto the canonical URL slug. It is idempotent.
func NormalizeProgramSlug(raw string) string {
	return slug.Make(slug.Substitute(raw, symbolSeparators))
}
