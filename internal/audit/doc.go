// Package audit implements the append-only security event trail.
//
// Events flow from the engine through an asynchronous Dispatcher into a
// pluggable Sink. The trail is best effort: a slow or failing sink never
// aborts or delays the operation that produced the event, and a full
// buffer drops rather than blocks when configured to.
package audit
