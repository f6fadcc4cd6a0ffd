// Package client provides the `shly` command-line client.
//
// The CLI talks to the shly HTTP API to review items from a terminal. Each
// command acts as one consumer; the identity is taken from --consumer,
// then $SHLY_CONSUMER, then $USER.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. The standalone binary reads SHLY_HTTP and
// defaults to http://127.0.0.1:8080.
//
// Usage
//
//	shly items import --file profiles.txt
//	shly items list --limit 20
//
//	shly review start --consumer anna
//	shly review watch --consumer anna --media-dir /tmp/avatars
//	shly review accept --consumer anna
//	shly review reject --consumer anna --presentation 6f1c...
//	shly review skip --consumer anna
//	shly review status --consumer anna
//	shly review accepted --consumer anna
//
// Notes
//
//   - watch keeps the outstanding presentation on reconnect: the server
//     replays it as the first event.
//   - a verdict for an item that is no longer current prints "Ignored"
//     and changes nothing.
package client
