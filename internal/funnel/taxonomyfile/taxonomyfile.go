// Package taxonomyfile loads status alias overrides from YAML:
//
//	aliases:
//	  "🟢 面接確定(再)": interview-confirmed
//	  "保留": long-term-follow-up
//
// Values are canonical status slugs. The file extends the default taxonomy.
package taxonomyfile

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"recruit_portal_backend/internal/funnel"

	"gopkg.in/yaml.v3"
)

type document struct {
	Aliases map[string]string `yaml:"aliases"`
}

// Load returns the default taxonomy extended with the aliases in path.
// An empty path yields the default taxonomy.
func Load(path string) (*funnel.Taxonomy, error) {
	if strings.TrimSpace(path) == "" {
		return funnel.DefaultTaxonomy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a taxonomy document. Unknown slugs are an error so that a
// typo cannot silently drop rows from the funnel.
func Parse(data []byte) (*funnel.Taxonomy, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse taxonomy file: %w", err)
	}

	aliases := make(map[string]funnel.Status, len(doc.Aliases))
	var unknown []string
	for raw, slug := range doc.Aliases {
		st, ok := funnel.ParseStatusSlug(strings.TrimSpace(slug))
		if !ok {
			unknown = append(unknown, fmt.Sprintf("%q -> %q", raw, slug))
			continue
		}
		aliases[raw] = st
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("taxonomy file has unknown status slugs: %s", strings.Join(unknown, ", "))
	}

	return funnel.DefaultTaxonomy().WithAliases(aliases), nil
}
