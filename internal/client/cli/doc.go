// Package cli provides the interactive apparel command-line client.
//
// It wires configuration, the HTTP API client and an interactive REPL.
// A background watcher probes the server and shows online or offline in the
// prompt. The REPL is started via App.Run(ctx), which blocks until the user
// exits or ctx is done.
package cli
