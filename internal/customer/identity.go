package customer

import (
	"slices"
	"strings"
)

// IdentityKeys names the contact details a customer claims inside its organization. Keys are
// sorted so every caller locks them in the same order.
func IdentityKeys(organizationID string, phone, email *string) []string {
	var keys []string
	if phone != nil && *phone != "" {
		keys = append(keys, organizationID+"/phone/"+*phone)
	}
	if email != nil && *email != "" {
		keys = append(keys, organizationID+"/email/"+strings.ToLower(*email))
	}
	slices.Sort(keys)
	return keys
}
