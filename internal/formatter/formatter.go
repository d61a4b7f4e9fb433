// package formatter converts playlist exports to CSV and parses the provider's URL and duration formats
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/desertthunder/ytcsv/internal/models"
)

// utf8BOM lets spreadsheet tools detect UTF-8 and render non-ASCII titles.
const utf8BOM = "\ufeff"

// CSVHeaders lists the export columns in output order.
var CSVHeaders = []string{"Title", "Channel", "Published Date", "Views", "Likes", "Duration", "URL"}

var unsafeFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// ExportToCSV converts a PlaylistExport to UTF-8 CSV (with byte-order mark) with columns:
// Title, Channel, Published Date, Views, Likes, Duration, URL
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	writer := csv.NewWriter(&buf)
	if err := writer.Write(CSVHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range export.Records {
		if err := writer.Write(record.Row()); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// SanitizeFilename strips the characters \ / * ? : " < > | from a playlist title.
func SanitizeFilename(title string) string {
	return unsafeFilenameChars.ReplaceAllString(title, "")
}

// CSVFilename returns the download filename for a playlist title.
//
// Titles that sanitize to nothing fall back to "playlist.csv".
func CSVFilename(title string) string {
	name := SanitizeFilename(title)
	if strings.TrimSpace(name) == "" {
		name = "playlist"
	}
	return name + ".csv"
}

// WriteCSVExport writes the export's CSV into dir using its Filename and returns the file path.
//
// Existing files with the same name are overwritten.
func WriteCSVExport(export *models.PlaylistExport, dir string) (string, error) {
	data, err := ExportToCSV(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	name := export.Filename
	if name == "" {
		name = CSVFilename(export.Title)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return path, nil
}

// WriteBulkExportManifest writes a JSON summary of a bulk export run to path.
func WriteBulkExportManifest(result *models.BulkExportResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}
