// Package stream consumes incremental provider responses. It auto-detects
// server-sent-event framing from the Content-Type and otherwise treats the
// body as raw chunked transfer, forwarding each chunk in arrival order while
// accumulating the full text.
package stream
