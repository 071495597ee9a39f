package inventory

import (
	"sync"
	"time"

	"github.com/hearthline/hearth/internal/models"
)

// DemoProvider serves a generated sample home so the dashboard can be
// explored without a real inventory file. The records are built relative
// to the provided clock: the water heater always sits just inside its
// planning window, the other systems age realistically around it.
type DemoProvider struct {
	mu      sync.RWMutex
	records []models.SystemRecord
}

// NewDemoProvider builds the sample home as of now.
func NewDemoProvider(now time.Time) *DemoProvider {
	return &DemoProvider{records: demoRecords(now)}
}

// Systems returns a copy of the sample records.
func (p *DemoProvider) Systems() ([]models.SystemRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	records := make([]models.SystemRecord, len(p.records))
	copy(records, p.records)
	return records, nil
}

// demoRecords assembles a believable mid-2000s colonial. All four
// critical systems are dated so the baseline reads as established, and
// the provenance mix lands the confidence bucket at Moderate, leaving
// the dashboard something to coach the owner toward.
func demoRecords(now time.Time) []models.SystemRecord {
	installed := func(yearsAgo int, month time.Month) *time.Time {
		t := time.Date(now.Year()-yearsAgo, month, 15, 0, 0, 0, 0, time.UTC)
		return &t
	}
	year := func(yearsAgo int) *int {
		y := now.Year() - yearsAgo
		return &y
	}

	return []models.SystemRecord{
		{
			SystemKey:   "hvac_carrier_58mvc",
			Name:        "Carrier 58MVC Gas Furnace",
			InstallDate: installed(11, time.October),
			DataSources: []string{"installer_invoice", "user_confirmed"},
			LastUpdated: now,
		},
		{
			SystemKey:   "roof_main",
			Name:        "Architectural Shingle Roof",
			InstallDate: installed(19, time.May),
			DataSources: []string{"building_permit"},
			LastUpdated: now,
		},
		{
			SystemKey:       "water_heater_rheem",
			Name:            "Rheem Performance 50gal",
			InstallDate:     installed(9, time.March),
			ManufactureYear: year(10),
			DataSources:     []string{"manufacturer_plate", "user_confirmed"},
			LastUpdated:     now,
		},
		{
			SystemKey:       "electrical_panel",
			Name:            "Square D 200A Panel",
			ManufactureYear: year(22),
			DataSources:     []string{"building_permit", "inspection_report"},
			LastUpdated:     now,
		},
		{
			SystemKey:       "plumbing_supply",
			Name:            "Copper Supply Lines",
			ManufactureYear: year(26),
			DataSources:     []string{"inspection_report"},
			LastUpdated:     now,
		},
		{
			SystemKey:   "windows_main",
			Name:        "Vinyl Double-Pane Windows",
			DataSources: []string{"listing_photo"},
			LastUpdated: now,
		},
		{
			SystemKey:   "deck_rear",
			Name:        "Rear Cedar Deck",
			InstallDate: installed(7, time.June),
			DataSources: []string{"user_confirmed"},
			LastUpdated: now,
		},
	}
}
