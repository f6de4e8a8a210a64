package report_emitter

import (
	"path/filepath"
	"time"

	"github.com/ninelmnts/assetscan/asset_scanner/models"
)

var fixtureTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func fixtureRecord(root, label, rel string, size int64) models.FileRecord {
	abs := filepath.Join(root, filepath.FromSlash(rel))
	return models.NewFileRecord(abs, rel, size, fixtureTime, label)
}

func fixtureRun() *models.ScanRun {
	studio := filepath.FromSlash("/work/studio")
	events := filepath.FromSlash("/work/event-os")
	return &models.ScanRun{
		ID:        "run-0001",
		StartedAt: fixtureTime,
		Roots: []models.RootSpec{
			{Path: studio, Label: "Studio"},
			{Path: events, Label: "event-os"},
		},
		Files: []models.FileRecord{
			fixtureRecord(studio, "Studio", "pages/pricing.html", 2048),
			fixtureRecord(studio, "Studio", "assets/logo.png", 128),
			fixtureRecord(studio, "Studio", "README", 10),
			fixtureRecord(events, "event-os", "src/event_schedule.ts", 4096),
			fixtureRecord(events, "event-os", "docs/license.md", 1536),
		},
		Diagnostics: []models.Diagnostic{},
	}
}
