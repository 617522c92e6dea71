package pagination

import "testing"

func TestNormalizeClampsValues(t *testing.T) {
	cases := []struct {
		name string
		in   Params
		want Params
	}{
		{"zeroes", Params{}, Params{Page: 1, PerPage: DefaultPerPage}},
		{"negative", Params{Page: -2, PerPage: -5}, Params{Page: 1, PerPage: DefaultPerPage}},
		{"overMax", Params{Page: 3, PerPage: 5000}, Params{Page: 3, PerPage: MaxPerPage}},
		{"inRange", Params{Page: 2, PerPage: 10}, Params{Page: 2, PerPage: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(); got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, PerPage: 10}).Offset(); got != 20 {
		t.Fatalf("offset = %d", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("default offset = %d", got)
	}
}

func TestBuildMeta(t *testing.T) {
	meta := BuildMeta(Params{Page: 2, PerPage: 10}, 25)
	if meta.TotalPages != 3 {
		t.Fatalf("total pages = %d", meta.TotalPages)
	}
	if meta.TotalItems != 25 || meta.Page != 2 || meta.PerPage != 10 {
		t.Fatalf("meta = %+v", meta)
	}

	empty := BuildMeta(Params{}, 0)
	if empty.TotalPages != 1 {
		t.Fatalf("empty listing should report one page, got %d", empty.TotalPages)
	}
}
