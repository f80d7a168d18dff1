// Package device implements a typed client for the music box JSON API.
//
// # Endpoints
//
//	GET json/musicfiles          → [models.MusicFile] list
//	GET json/readnfc             → [models.NfcStatus]
//	GET json/wlantimeout         → [models.WlanTimeoutStatus]
//	GET actions/writenfc?data=   → [models.ActionResult]
//	GET actions/deletefile?data= → [models.ActionResult]
//
// Every request is bounded by a per-request timeout and, optionally, a shared [rate.Limiter] so a slow
// device isn't flooded by the dashboard's polling loops.
//
// # Error Handling
//
// Transport failures wrap [shared.ErrDeviceUnavailable]. Non-2xx statuses and undecodable bodies wrap
// [shared.ErrAPIRequest]. A well-formed action response with success=false is NOT an error at this layer:
// callers receive the [models.ActionResult] and use [ActionError] when they want one.
package device
