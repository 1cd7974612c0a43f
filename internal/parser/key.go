package parser

import (
	"regexp"
	"strings"

	"formulab/internal/domain"
)

var nonKeyChars = regexp.MustCompile(`[^A-Z0-9-]`)

// defaultTypeTags seeds the type→tag mapping; the catalog's TypeMappings
// sheet extends it at runtime.
var defaultTypeTags = map[string]string{
	"ACRILICA SATINADA":    "AS",
	"ACRILICA SEMIGLOSS":   "SG",
	"ACRILICA SUPERIOR":    "SUP",
	"ACRILICA SUPERIOR HP": "HP",
	"EPOXICA":              "EP",
	"MANO DE OBRA":         "MO",
}

// BuildKey derives the catalog key <BRAND>-<TYPETAG>-<COLORTAG>. Extra
// mappings override the seeded defaults; an unknown type falls back to
// SuggestTypeTag.
func BuildKey(brand domain.Brand, typ, color string, mappings map[string]string) string {
	prefix := domain.BrandPrefixes[brand]
	if prefix == "" {
		prefix = "IN"
	}

	normType := strings.ToUpper(strings.Join(strings.Fields(typ), " "))
	tag := mappings[normType]
	if tag == "" {
		tag = defaultTypeTags[normType]
	}
	if tag == "" {
		tag = SuggestTypeTag(typ)
	}

	colorTag := nonKeyChars.ReplaceAllString(strings.ToUpper(color), "")
	if colorTag == "" {
		colorTag = "BL"
	}
	return prefix + "-" + tag + "-" + colorTag
}

// SuggestTypeTag proposes a short tag for a type name the mapping table does
// not know yet: initials of up to three words, "GEN" when nothing usable.
func SuggestTypeTag(typ string) string {
	var initials []byte
	for _, word := range strings.Fields(strings.ToUpper(typ)) {
		if word[0] >= 'A' && word[0] <= 'Z' {
			initials = append(initials, word[0])
		}
		if len(initials) == 3 {
			break
		}
	}
	if len(initials) == 0 {
		return "GEN"
	}
	return string(initials)
}
