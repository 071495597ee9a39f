package models

import (
	"testing"
	"time"
)

func TestBaseKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hvac", "hvac"},
		{"hvac_carrier_abc123", "hvac"},
		{"roof_gaf_2009", "roof"},
		{"water_heater", "water_heater"},
		{"water_heater_rheem_50g", "water_heater"},
		{"electrical_panel", "electrical"},
		{"deck", "deck"},
		{"  HVAC_Carrier  ", "hvac"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := BaseKey(tc.in); got != tc.want {
			t.Errorf("BaseKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsCritical(t *testing.T) {
	for _, key := range []string{"hvac", "roof_gaf", "water_heater_rheem", "electrical_panel_200a"} {
		if !IsCritical(key) {
			t.Errorf("IsCritical(%q) = false, want true", key)
		}
	}
	for _, key := range []string{"deck", "windows_anderson", "pool"} {
		if IsCritical(key) {
			t.Errorf("IsCritical(%q) = true, want false", key)
		}
	}
}

func TestSeasonOf(t *testing.T) {
	cases := []struct {
		month time.Month
		want  Season
	}{
		{time.January, SeasonWinter},
		{time.February, SeasonWinter},
		{time.March, SeasonSpring},
		{time.April, SeasonSpring},
		{time.May, SeasonSpring},
		{time.June, SeasonSummer},
		{time.July, SeasonSummer},
		{time.August, SeasonSummer},
		{time.September, SeasonFall},
		{time.October, SeasonFall},
		{time.November, SeasonFall},
		{time.December, SeasonWinter},
	}
	for _, tc := range cases {
		at := time.Date(2025, tc.month, 15, 12, 0, 0, 0, time.UTC)
		if got := SeasonOf(at); got != tc.want {
			t.Errorf("SeasonOf(%v) = %q, want %q", tc.month, got, tc.want)
		}
	}
}

func TestParseClimateZone(t *testing.T) {
	cases := []struct {
		in   string
		want ClimateZone
	}{
		{"hurricane", ClimateHurricane},
		{"FREEZE", ClimateFreeze},
		{" temperate ", ClimateTemperate},
		{"coastal", ClimateTemperate},
		{"", ClimateTemperate},
	}
	for _, tc := range cases {
		if got := ParseClimateZone(tc.in); got != tc.want {
			t.Errorf("ParseClimateZone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHasDataSource(t *testing.T) {
	rec := SystemRecord{DataSources: []string{"Building Permit 2019", "inspection"}}
	if !rec.HasDataSource("permit") {
		t.Error("expected permit tag to match case-insensitively")
	}
	if rec.HasDataSource("user", "manual", "owner") {
		t.Error("did not expect an owner-reported tag")
	}
	if (SystemRecord{}).HasDataSource("permit") {
		t.Error("empty record should not match any tag")
	}
}

func TestDated(t *testing.T) {
	if (SystemRecord{}).Dated() {
		t.Error("record without dates should not be dated")
	}
	year := 2015
	if !(SystemRecord{ManufactureYear: &year}).Dated() {
		t.Error("manufacture year alone should count as dated")
	}
	install := time.Date(2018, time.June, 1, 0, 0, 0, 0, time.UTC)
	if !(SystemRecord{InstallDate: &install}).Dated() {
		t.Error("install date alone should count as dated")
	}
}
