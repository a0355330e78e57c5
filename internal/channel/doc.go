// Package channel owns the notification channel between the controlling
// process and a worker over two duplex byte streams.
//
// Ownership boundary:
// - receive-buffer reassembly of length-prefixed frames
// - header/payload pairing and delivery to registered sinks
// - outbound notification construction and size validation
// - open/close lifecycle with deferred transport teardown
package channel
