// Package config loads the CLI's runtime settings.
//
// Sources are layered, later ones winning: built-in defaults, a JSON config
// file (path given with -c/-config), OBEX_* environment variables, and
// finally command-line flags.
package config
