package datetime

import (
	"testing"
	"time"
)

func TestDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  string
		ok    bool
	}{
		{name: "date_only", input: "2024-03-09", want: "2024-03-09", ok: true},
		{name: "rfc3339", input: "2024-03-09T23:10:00Z", want: "2024-03-09", ok: true},
		{name: "space_separated", input: "2024-03-09 08:00:00", want: "2024-03-09", ok: true},
		{name: "us_slashes", input: "03/09/2024", want: "2024-03-09", ok: true},
		{name: "long_month", input: "March 9, 2024", want: "2024-03-09", ok: true},
		{name: "unix_seconds", input: int64(0), want: "1970-01-01", ok: true},
		{name: "unix_string", input: "86400", want: "1970-01-02", ok: true},
		{name: "time_value", input: time.Date(2020, 2, 29, 12, 0, 0, 0, time.UTC), want: "2020-02-29", ok: true},
		{name: "garbage", input: "not a date", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "nil", input: nil, ok: false},
		{name: "list", input: []any{"2024-01-01"}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Date(tt.input)
			if ok != tt.ok {
				t.Fatalf("Date(%v) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("Date(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestYearMonth(t *testing.T) {
	t.Parallel()

	if got, ok := Year("2019-07-04"); !ok || got != "2019" {
		t.Fatalf("Year() = (%q, %v), want (2019, true)", got, ok)
	}
	if got, ok := Month("2019-07-04"); !ok || got != "07" {
		t.Fatalf("Month() = (%q, %v), want (07, true)", got, ok)
	}
	if _, ok := Month("never"); ok {
		t.Fatal("Month(never) should fail")
	}
}

func TestUnixDate(t *testing.T) {
	t.Parallel()

	got, ok := UnixDate("1970-01-02T13:00:00Z")
	if !ok || got != 86400 {
		t.Fatalf("UnixDate() = (%d, %v), want (86400, true)", got, ok)
	}
}
