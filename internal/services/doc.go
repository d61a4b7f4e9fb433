// Package services defines the [Provider] interface for the read-only YouTube lookups an export performs
// and implements it over the YouTube Data API v3.
//
// # Provider Interface
//
// An export needs three calls: the playlist title, pages of playlist items, and batched video details.
// Keeping them behind [Provider] lets the export pipeline run against a fake in tests.
//
// # YouTube Implementation
//
// [YouTubeService] authenticates with an API key passed in [YouTubeOpts]. Each call runs under its own
// timeout and, when configured, waits on a token-bucket rate limiter first. Failed calls are not retried.
//
// # Error Handling
//
// Errors are mapped onto types from the shared package:
//   - [shared.ProviderError] : the API answered with an error payload; status and message are kept
//   - [shared.ProviderError] with status 504 : the per-call timeout elapsed
//   - [shared.ErrMissingCredentials] : no API key configured
//
// Transport failures are returned wrapped and treated as internal errors by callers.
//
// # API Mappings
//
// playlistItems snippets map to [models.PlaylistEntry]. The Has* flags record whether the API sent
// a non-empty title, owner channel, and publish timestamp, since the client library cannot tell an
// omitted field from an empty one.
//
// videos map to [models.VideoDetail] from their snippet, statistics and contentDetails parts.
package services
