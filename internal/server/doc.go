// Package server provides HTTP routing, middleware, and a simulated music box for development and tests.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Simulator
//
// [Simulator] serves the same JSON API as the device: the music file listing, the tag reader status, the WLAN
// fallback countdown, and the write/delete actions. Music files come from a directory on disk and are identified
// by a 16 byte payload: the music control byte followed by the tail of the md5 digest of the file name.
//
// A single virtual tag sits on the reader. Tests can take it off or put it back with [Simulator.RemoveTag] and
// [Simulator.PlaceTag].
//
// Requesting the home page resets the WLAN countdown, as the device does when its web page is loaded.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
