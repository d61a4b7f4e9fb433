package formatter

import (
	"fmt"
	"regexp"

	"github.com/desertthunder/ytcsv/internal/shared"
)

// playlistURLPattern is searched for anywhere in the input, so surrounding text is ignored.
var playlistURLPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/playlist\?list=([a-zA-Z0-9_-]+)`)

// ExtractPlaylistID returns the playlist identifier from a playlist URL.
//
// Accepts [http(s)://][www.]youtube.com/playlist?list=<id>; the id runs until the first character
// outside letters, digits, "_" and "-".
func ExtractPlaylistID(rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("%w: playlist URL is required", shared.ErrMissingArgument)
	}

	match := playlistURLPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return "", fmt.Errorf("%w: no playlist id in %q", shared.ErrInvalidInput, rawURL)
	}

	return match[1], nil
}
