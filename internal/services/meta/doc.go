// Package meta implements the Meta Graph API protocols for the four publish
// targets: Instagram reels and stories through the container lifecycle
// (create, poll, publish), Facebook reels through the three-phase resumable
// upload, and Facebook feed videos through a single pull-by-URL call.
//
// The client exchanges the configured user access token for a page access
// token at startup and falls back to the user token when the exchange fails.
// All publish paths hand Meta a fetchable video URL; bytes are never
// uploaded from this process.
package meta
