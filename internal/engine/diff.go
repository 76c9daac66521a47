package engine

import (
	"fmt"
	"strings"

	"github.com/uprez/upgrade-engine/internal/model"
)

// maxDiffs caps the number of bullets an option carries.
const maxDiffs = 3

// amenityLabels maps amenity slugs worth calling out to guest-facing
// bullet text, in priority order. Amenities outside this list never
// produce a bullet.
var amenityLabels = []struct {
	slug  string
	label string
}{
	{"pool", "Private Pool"},
	{"parking", "Free Parking"},
	{"garden", "Garden Access"},
	{"workspace", "Dedicated Workspace"},
	{"gym", "Gym"},
	{"balcony", "Balcony"},
	{"elevator", "Elevator"},
}

// PropertyDiffs derives up to three human-readable improvement bullets
// between the original and a candidate. The order is fixed: the extra
// bedroom bullet (with the bed-count delta) comes first, then the
// bathroom bullet, then amenity bullets in priority order for amenities
// the candidate has and the original lacks. Same inputs always yield
// the same sequence.
func PropertyDiffs(original, candidate model.Property) []string {
	diffs := make([]string, 0, maxDiffs)

	if candidate.Beds > original.Beds {
		diffs = append(diffs, fmt.Sprintf("%d Extra Bedroom(s)", candidate.Beds-original.Beds))
	}
	if candidate.Baths > original.Baths {
		diffs = append(diffs, "Additional Bathroom")
	}

	orig := make(map[string]struct{}, len(original.Amenities))
	for _, a := range original.Amenities {
		orig[strings.ToLower(a)] = struct{}{}
	}
	cand := make(map[string]struct{}, len(candidate.Amenities))
	for _, a := range candidate.Amenities {
		cand[strings.ToLower(a)] = struct{}{}
	}

	for _, al := range amenityLabels {
		if len(diffs) >= maxDiffs {
			break
		}
		if _, ok := cand[al.slug]; !ok {
			continue
		}
		if _, ok := orig[al.slug]; ok {
			continue
		}
		diffs = append(diffs, al.label)
	}

	if len(diffs) > maxDiffs {
		diffs = diffs[:maxDiffs]
	}
	return diffs
}
