package validators

import "strings"

// SanitizeCode normalizes a coupon code as shoppers type it: " save 10 " becomes "SAVE10".
// An over-long code returns "" so it is rejected rather than matched by prefix.
func SanitizeCode(input string, maxLen int) string {
	code := strings.ToUpper(strings.Join(strings.Fields(input), ""))
	if maxLen > 0 && len(code) > maxLen {
		return ""
	}
	return code
}
