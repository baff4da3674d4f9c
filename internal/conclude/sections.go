package conclude

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"paperrag/internal/section"
)

// LoadCanonicalSections reads every raw section file named in mapping
// from paperDir and keys the concatenated content by canonical section.
// Multiple raw titles mapped to the same canonical section are
// concatenated with a blank-line separator. section_mapping.json does
// not retain raw-title discovery order once parsed back into a Go map,
// so titles sharing a canonical section are joined in whatever order
// the map yields them; callers needing strict discovery order should
// read section_mapping.json's raw JSON object key order directly.
func LoadCanonicalSections(paperDir string, mapping *section.Mapping) (map[section.Canonical]string, error) {
	result := make(map[section.Canonical]string, len(section.All5))

	for _, rawTitle := range orderedRawTitles(mapping) {
		canonical := mapping.SectionMapping[rawTitle]

		path := filepath.Join(paperDir, rawTitle+".txt")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("conclude: failed to read raw section %s: %w", path, err)
		}

		content := strings.TrimSpace(string(data))
		if existing, ok := result[canonical]; ok {
			result[canonical] = existing + "\n\n" + content
		} else {
			result[canonical] = content
		}
	}

	return result, nil
}

// orderedRawTitles returns mapping.SectionMapping's raw titles grouped by
// canonical section in section.All5 order; titles sharing a canonical
// section come in map iteration order. A title mapped to a value outside
// section.All5 is not returned.
func orderedRawTitles(mapping *section.Mapping) []string {
	byCanonical := make(map[section.Canonical][]string)
	for title, canonical := range mapping.SectionMapping {
		byCanonical[canonical] = append(byCanonical[canonical], title)
	}

	var ordered []string
	for _, c := range section.All5 {
		titles := byCanonical[c]
		ordered = append(ordered, titles...)
	}
	return ordered
}
