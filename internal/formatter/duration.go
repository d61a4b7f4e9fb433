package formatter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/desertthunder/ytcsv/internal/models"
)

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// FormatDuration converts an ISO-8601 duration such as PT1H2M3S into H:MM:SS, or MM:SS under an hour.
//
// Empty input and durations with a day component return "N/A". Input that does not start with the
// PT form returns "00:00".
func FormatDuration(iso string) string {
	if iso == "" || strings.Contains(iso, "D") {
		return models.NotAvailable
	}

	match := isoDurationPattern.FindStringSubmatch(iso)
	if match == nil {
		return "00:00"
	}

	total := component(match[1])*3600 + component(match[2])*60 + component(match[3])

	m, s := total/60, total%60
	h, m := m/60, m%60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func component(v string) int {
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
