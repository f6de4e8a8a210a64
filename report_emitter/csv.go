package report_emitter

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/ninelmnts/assetscan/asset_scanner/models"
)

// CSVHeader is the fixed column order of the curation table. The last four
// columns are filled in by hand after import and are always written empty.
var CSVHeader = []string{
	"Name",
	"Path",
	"Relative Path",
	"Project",
	"Extension",
	"Size (bytes)",
	"Size (KB)",
	"Modified",
	"Directory",
	"Asset Type",
	"Category",
	"Status",
	"Notes",
}

// SizeKiB converts bytes to kibibytes rounded to two decimals, halves to even.
func SizeKiB(sizeBytes int64) float64 {
	return math.RoundToEven(float64(sizeBytes)/1024*100) / 100
}

// CSVRow renders one record in CSVHeader order.
func CSVRow(f models.FileRecord) []string {
	return []string{
		f.Name,
		f.AbsolutePath,
		f.RelativePath,
		f.ProjectLabel,
		f.Extension,
		strconv.FormatInt(f.SizeBytes, 10),
		strconv.FormatFloat(SizeKiB(f.SizeBytes), 'f', 2, 64),
		f.ModifiedTime.Format(time.RFC3339),
		f.ParentDirectory,
		"", // Asset Type
		"", // Category
		"", // Status
		"", // Notes
	}
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(path string, files []models.FileRecord) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for _, record := range files {
		if err := writer.Write(CSVRow(record)); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
