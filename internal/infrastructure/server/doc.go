// Package server wires configuration, the store, the host and the HTTP
// stack into a runnable server.
package server
