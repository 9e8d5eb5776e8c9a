package address

import (
	"testing"

	"github.com/angelmondragon/freshcart-backend/pkg/db/models"
)

func TestFormatSnapshot(t *testing.T) {
	line2 := "Flat 4B"
	phone := "+91 98765 43210"
	tests := []struct {
		name string
		addr models.Address
		want string
	}{
		{
			name: "full address",
			addr: models.Address{
				RecipientName: "Asha Rao",
				Line1:         "12 Lake Road",
				Line2:         &line2,
				City:          "Pune",
				State:         "MH",
				PostalCode:    "411001",
				Country:       "IN",
				Phone:         &phone,
			},
			want: "Asha Rao\n12 Lake Road\nFlat 4B\nPune, MH 411001\nIN\nPhone: +91 98765 43210",
		},
		{
			name: "minimal address",
			addr: models.Address{Line1: "1 Main St", City: "Springfield", PostalCode: "12345"},
			want: "1 Main St\nSpringfield 12345",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatSnapshot(tc.addr); got != tc.want {
				t.Fatalf("unexpected snapshot:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}
