package pipeline

import (
	"strings"

	"github.com/osmaddr/extractor/internal/pbf"
)

// components is the fixed set of address parts pulled from an element's
// tags. Missing parts stay empty; nothing is defaulted.
type components struct {
	houseNumber  string
	street       string
	city         string
	suburb       string
	postcode     string
	countryCode  string
	buildingName string
}

func extractComponents(tags pbf.Tags) components {
	return components{
		houseNumber:  tags["addr:housenumber"],
		street:       tags["addr:street"],
		city:         tags["addr:city"],
		suburb:       tags["addr:suburb"],
		postcode:     tags["addr:postcode"],
		countryCode:  tags["addr:country"],
		buildingName: tags["name"],
	}
}

// hasAddressTags is the cheap pre-filter: the element must be tagged as a
// building and carry a street or house number at all.
func hasAddressTags(tags pbf.Tags) bool {
	if len(tags) == 0 {
		return false
	}
	if _, ok := tags["building"]; !ok {
		return false
	}
	_, hasStreet := tags["addr:street"]
	_, hasNumber := tags["addr:housenumber"]
	return hasStreet || hasNumber
}

// formatFullAddress assembles the denormalized display address: building
// name, "<number> <street>" (or bare street), suburb, city, postcode,
// country, comma-joined with empty parts omitted. Deterministic for fixed
// input.
func formatFullAddress(c components, countryName string) string {
	parts := make([]string, 0, 6)
	if c.buildingName != "" {
		parts = append(parts, c.buildingName)
	}
	switch {
	case c.houseNumber != "" && c.street != "":
		parts = append(parts, c.houseNumber+" "+c.street)
	case c.street != "":
		parts = append(parts, c.street)
	}
	if c.suburb != "" {
		parts = append(parts, c.suburb)
	}
	if c.city != "" {
		parts = append(parts, c.city)
	}
	if c.postcode != "" {
		parts = append(parts, c.postcode)
	}
	if countryName != "" {
		parts = append(parts, countryName)
	}
	return strings.Join(parts, ", ")
}
