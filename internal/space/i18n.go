package space

import "fmt"

// Lang selects the display language for projected views.
type Lang string

const (
	LangEn Lang = "en"
	LangJa Lang = "ja"
)

// ParseLang maps arbitrary input to a supported language, defaulting to
// English.
func ParseLang(s string) Lang {
	if Lang(s) == LangJa {
		return LangJa
	}
	return LangEn
}

var statusLabels = map[Lang]map[Status]string{
	LangEn: {
		StatusAvailable: "Available",
		StatusTaken:     "Taken",
		StatusShared:    "Shared",
	},
	LangJa: {
		StatusAvailable: "空き",
		StatusTaken:     "契約済み",
		StatusShared:    "共有",
	},
}

var tagLabels = map[Lang]map[Facet]map[string]string{
	LangEn: {
		FacetLocation: {
			"outside": "Outside",
			"inside":  "Inside",
		},
		FacetElement: {
			"wall":    "Wall",
			"door":    "Door",
			"window":  "Window",
			"floor":   "Floor",
			"ceiling": "Ceiling",
		},
		FacetStyle: {
			"neutral": "Neutral",
			"modern":  "Modern",
			"vintage": "Vintage",
			"rustic":  "Rustic",
		},
	},
	LangJa: {
		FacetLocation: {
			"outside": "屋外",
			"inside":  "室内",
		},
		FacetElement: {
			"wall":    "壁",
			"door":    "ドア",
			"window":  "窓",
			"floor":   "床",
			"ceiling": "天井",
		},
		FacetStyle: {
			"neutral": "ニュートラル",
			"modern":  "モダン",
			"vintage": "ヴィンテージ",
			"rustic":  "ラスティック",
		},
	},
}

// TagLabel translates a facet value, falling back to the raw value for tags
// the table does not know.
func TagLabel(lang Lang, f Facet, v string) string {
	if m, ok := tagLabels[lang]; ok {
		if l, ok := m[f][v]; ok {
			return l
		}
	}
	return v
}

// StatusLabel translates a display status.
func StatusLabel(lang Lang, st Status) string {
	if l, ok := statusLabels[lang][st]; ok {
		return l
	}
	return string(st)
}

// Found renders the results summary line.
func Found(lang Lang, n int) string {
	if lang == LangJa {
		return fmt.Sprintf("全%d件", n)
	}
	if n == 1 {
		return "1 space found"
	}
	return fmt.Sprintf("%d spaces found", n)
}
