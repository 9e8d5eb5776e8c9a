package address

import (
	"strings"

	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
)

// FormatSnapshot renders the address as the multi-line text frozen onto an order.
func FormatSnapshot(addr models.Address) string {
	lines := make([]string, 0, 5)
	if name := strings.TrimSpace(addr.RecipientName); name != "" {
		lines = append(lines, name)
	}
	lines = append(lines, strings.TrimSpace(addr.Line1))
	if addr.Line2 != nil && strings.TrimSpace(*addr.Line2) != "" {
		lines = append(lines, strings.TrimSpace(*addr.Line2))
	}

	locality := strings.TrimSpace(addr.City)
	if state := strings.TrimSpace(addr.State); state != "" {
		locality += ", " + state
	}
	if postal := strings.TrimSpace(addr.PostalCode); postal != "" {
		locality += " " + postal
	}
	lines = append(lines, locality)

	if country := strings.TrimSpace(addr.Country); country != "" {
		lines = append(lines, country)
	}
	if addr.Phone != nil && strings.TrimSpace(*addr.Phone) != "" {
		lines = append(lines, "Phone: "+strings.TrimSpace(*addr.Phone))
	}
	return strings.Join(lines, "\n")
}
