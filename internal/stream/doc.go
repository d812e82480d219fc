// Package stream implements a client for server-sent event streams.
//
// # Subscriptions
//
// A [Client] owns one logical subscription: a URL, a set of request headers, the handlers registered with
// [Client.AddEventListener], and the retry and cancellation state of the connection.
//
//	c := stream.NewClient(stream.ClientOpts{URL: url, Headers: headers})
//	c.AddEventListener("count", func(ev stream.Event) { ... })
//	c.Connect()
//	defer c.Close()
//
// Every request carries "Accept: text/event-stream" and "Cache-Control: no-cache" in addition to the caller's headers.
//
// # Framing
//
// Response bytes are read one chunk at a time and decoded by a [Decoder] that keeps partial multi-byte characters
// between chunks. The [Framer] appends decoded text to its buffer, splits on blank lines ("\n\n"), and keeps the
// trailing incomplete piece for the next chunk. Within a frame, "event:" sets the type and "data:" sets the payload;
// a frame without "event:" has type [DefaultEventType]. No "id:", "retry:" or multi-line data support.
//
// # Reconnection
//
// When the stream ends (gracefully or not) and the client was not closed, reconnects are scheduled with the
// [Backoff] policy: 1s, 2s, 4s by default, capped at 10s. The counter resets once a stream opens. After the last
// attempt fails the client goes dormant until [Client.Connect] is called again.
//
// A clean end of stream counts as a failure. The server may close idle streams on purpose, so the client keeps
// following them; if that changes, a graceful EOF should stop here instead of scheduling a reconnect.
//
// [Client.Close] cancels the in-flight request and any pending reconnect. Handlers are never invoked after it.
package stream
