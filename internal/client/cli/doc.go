// Package cli implements the interactive Obex journal REPL: account
// commands, entry writing and browsing, profile management, and the
// background sync watcher.
package cli
