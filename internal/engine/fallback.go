package engine

import (
	"fmt"
	"strings"

	"github.com/uprez/upgrade-engine/internal/model"
)

// FallbackHeadline produces the deterministic headline used when no
// AI copy is attached to an option. Pool and family-sized properties
// get a themed line; everything else falls back to the property name.
func FallbackHeadline(candidate model.Property) string {
	for _, a := range candidate.Amenities {
		if strings.EqualFold(a, "pool") {
			return "Upgrade to a villa with private pool"
		}
	}
	if candidate.Beds >= 3 {
		return "More space for the whole family"
	}
	return fmt.Sprintf("Upgrade to %s", candidate.Name)
}

// FallbackSummary joins the diff bullets into a single sentence, or
// falls back to a location line when there are no bullets.
func FallbackSummary(candidate model.Property, diffs []string) string {
	if len(diffs) == 0 {
		if candidate.Location != "" {
			return fmt.Sprintf("Enhanced property in %s.", candidate.Location)
		}
		return "Experience more space and better amenities."
	}
	parts := make([]string, len(diffs))
	parts[0] = diffs[0]
	for i := 1; i < len(diffs); i++ {
		parts[i] = strings.ToLower(diffs[i])
	}
	return strings.Join(parts, ", ") + "."
}

// FallbackSubject is the email subject used when the copywriting
// collaborator produced nothing for the best option.
func FallbackSubject(guestName, propName string) string {
	if guestName != "" {
		return fmt.Sprintf("%s, upgrade your stay to %s?", guestName, propName)
	}
	return fmt.Sprintf("Exclusive upgrade opportunity: %s", propName)
}
