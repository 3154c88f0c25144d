// Package mpvipc speaks mpv's JSON IPC protocol over a Unix socket.
//
// One reader goroutine owns the connection's read side. Replies are matched to
// waiting callers by request_id, so any number of goroutines may issue
// requests concurrently. Everything else the player sends is an event, queued
// without bound and delivered in arrival order on Events. End of stream fails
// pending requests with services.ErrConnectionLost and closes Events once the
// queue drains; a client is not reusable after that and callers reconnect with
// a fresh Dial.
package mpvipc
