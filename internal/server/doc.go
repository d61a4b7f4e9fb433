// Package server provides HTTP routing, middleware, and the playlist export endpoint.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering. A request with the
// wrong method receives 405 with a JSON error body.
//
// # Export Endpoint
//
// [ExportHandler] serves POST /api/export with a {"playlist_url": "..."} body. On success it returns the
// playlist as text/csv with a Content-Disposition attachment named after the sanitized playlist title.
//
// # Errors
//
// Every failure is converted at the handler boundary by [WriteError], using [StatusFor]:
//   - missing API key : 500
//   - missing or malformed URL : 400
//   - unknown or private playlist : 404
//   - [shared.ProviderError] : the provider's status and message
//   - anything else : 500 with a generic message; details stay in the server log
//
// # Middleware
//
// [NewRouter] installs request ids (X-Request-ID), access logging, panic recovery and CORS, in that order.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
