package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/ytcsv/internal/models"
)

// ExportSummary renders the per-playlist outcome of a bulk export run.
func ExportSummary(p *Palette, result *models.BulkExportResult) string {
	var b strings.Builder

	b.WriteString(p.Title("Export Complete") + "\n")
	fmt.Fprintf(&b, "Run: %s\n", result.RunID)
	fmt.Fprintf(&b, "Output: %s\n\n", result.OutputDirectory)

	for _, res := range result.Results {
		if res.Success {
			fmt.Fprintf(&b, "%s %s (%d records) → %s\n", p.OK("✓"), res.Title, res.Records, res.File)
		} else {
			fmt.Fprintf(&b, "%s %s: %s\n", p.Err("✗"), res.URL, res.Error)
		}
	}

	b.WriteString("\n")
	status := fmt.Sprintf("%d/%d playlists exported", result.SuccessfulExports, result.TotalPlaylists)
	if result.FailedExports > 0 {
		b.WriteString(p.Warn(status) + "\n")
	} else {
		b.WriteString(p.OK(status) + "\n")
	}

	if result.ManifestPath != "" {
		b.WriteString(p.Help("Manifest: "+result.ManifestPath) + "\n")
	}
	return b.String()
}
