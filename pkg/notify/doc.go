// Package notify provides message channels for the engine's emit policy.
//
// Log writes every message through slog, Memory queues messages for the host
// to display later, and Channel forwards them to a Go channel without ever
// blocking: when the buffer is full the message is dropped and counted.
// Multi fans a message out to several emitters.
package notify
