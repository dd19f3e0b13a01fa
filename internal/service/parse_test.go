package service

import (
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"45.20", "45.2", true},
		{"$12.99", "12.99", true},
		{"€1,250.00", "1250", true},
		{"+300", "300", true},
		{"-1200.00", "-1200", true},
		{"$-12.00", "-12", true},
		{"-$12.00", "-12", true},
		{"(12.00)", "-12", true},
		{"($1,250.00)", "-1250", true},
		{"1 234.56", "1234.56", true},
		{"₽500", "500", true},
		{"0.00", "", false},
		{"(0.00)", "", false},
		{"()", "", false},
		{"", "", false},
		{"N/A", "", false},
		{"twelve", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseAmount(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2024-03-15", day(2024, time.March, 15), true},
		{"2024/03/15", day(2024, time.March, 15), true},
		{"Mar 15, 2024", day(2024, time.March, 15), true},
		{"15 March 2024", day(2024, time.March, 15), true},
		{"03/15/2024", day(2024, time.March, 15), true},
		// First component over 12 forces day-first reading.
		{"15/03/2024", day(2024, time.March, 15), true},
		{"15.03.2024", day(2024, time.March, 15), true},
		{"03/15/24", day(2024, time.March, 15), true},
		{"sometime last week", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseDateAmbiguousSlashPrefersMonthFirst(t *testing.T) {
	got, ok := ParseDate("05/03/2024")
	if !ok {
		t.Fatal("expected successful parse")
	}
	want := time.Date(2024, time.May, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %s, want month-first %s", got, want)
	}
}
