package countries

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/osmaddr/extractor/internal/common"
)

// Country is one claimable unit of work.
type Country struct {
	Code string
	Name string
}

// ClaimOrder decides the sequence in which workers attempt claims.
type ClaimOrder string

const (
	// OrderCatalog preserves the catalog's own ordering.
	OrderCatalog ClaimOrder = "catalog"
	// OrderAlphabetical sorts by country code.
	OrderAlphabetical ClaimOrder = "alphabetical"
	// OrderSmallestFirst tries small extracts before large ones, so many
	// workers drain the cheap jobs before anyone commits to a huge file.
	OrderSmallestFirst ClaimOrder = "smallest-first"
)

// catalogSchema validates operator-supplied catalog files: an object keyed
// by alpha-2 code, each entry carrying at least a name.
const catalogSchema = `{
	"type": "object",
	"minProperties": 1,
	"propertyNames": {"pattern": "^[A-Za-z]{2}$"},
	"additionalProperties": {
		"type": "object",
		"properties": {"name": {"type": "string", "minLength": 1}},
		"required": ["name"]
	}
}`

// Load reads a catalog JSON file ({"US": {"name": "United States"}, ...}),
// validates it against the schema, and returns entries in file order.
func Load(path string) ([]Country, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(err, "read countries file")
	}

	schema := jsonschema.MustCompileString("countries.schema.json", catalogSchema)

	// Schema validation wants numbers as json.Number, not float64.
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, common.WrapError(err, "parse countries file")
	}
	if err := schema.Validate(doc); err != nil {
		return nil, common.NewAppError("CATALOG_INVALID", fmt.Sprintf("countries file %s failed validation", path), err)
	}

	entries, ok := doc.(map[string]any)
	if !ok {
		return nil, common.NewAppError("CATALOG_INVALID", "countries file is not an object", common.ErrValidation)
	}

	list := make([]Country, 0, len(entries))
	for code, v := range entries {
		name := ""
		if m, ok := v.(map[string]any); ok {
			if s, ok := m["name"].(string); ok {
				name = s
			}
		}
		code = strings.ToUpper(code)
		if name == "" {
			name = Name(code)
		}
		list = append(list, Country{Code: code, Name: name})
	}
	// Map iteration order is random; keep external catalogs stable.
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

// Default returns the built-in catalog: every country in the canonical
// display-name table.
func Default() []Country {
	list := make([]Country, 0, len(displayNames))
	for code, name := range displayNames {
		list = append(list, Country{Code: code, Name: name})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}

// Ordered returns the catalog arranged per the claim-order strategy.
func Ordered(list []Country, order ClaimOrder) []Country {
	out := make([]Country, len(list))
	copy(out, list)
	switch order {
	case OrderAlphabetical:
		sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	case OrderSmallestFirst:
		sort.SliceStable(out, func(i, j int) bool {
			return sizeRank(out[i].Code) < sizeRank(out[j].Code)
		})
	}
	return out
}

// Size categories are rough, keyed off the original batch schedule: tiny
// island/city-state extracts first, continental heavyweights last.
func sizeRank(code string) int {
	if smallExtracts[code] {
		return 0
	}
	if largeExtracts[code] {
		return 2
	}
	return 1
}

var smallExtracts = toSet("AD AI AW BB BM BQ BV CC CK CW CX DM FK FO GF GG GI GL GP GS GU HM IM IO JE KI KY LC LI MF MH MP MQ MS MT MU MV NC NF NR NU PF PM PN PR PW RE SH SJ SM TC TF TK TO TV UM VA VC VG VI WF WS YT")

var largeExtracts = toSet("US RU CN CA BR AU IN AR KZ DZ CD SA MX ID SD LY IR MN PE TD NE AO EG TZ ZA CO ET BO MR PK VE CL TR ZM MM AF SO CF UA MG BW KE FR YE TH ES TM CM PG UZ IQ PY ZW JP DE MY VN FI IT PH BF NZ GA GN UG GH RO LA GY BY KG SN SY KH TN SL BD HN ER JO GE LB NI MK MW LR BJ CU GR TG IS HU PT AZ AT CZ PA AE JM AM RW TJ AL QA NA LS SI KW FJ CY TL BH VU ME EE TT KM LU BN BS BZ CV ST")

func toSet(codes string) map[string]bool {
	set := make(map[string]bool)
	for _, c := range strings.Fields(codes) {
		set[c] = true
	}
	return set
}
