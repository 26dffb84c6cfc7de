// Package settings caches the server settings bundle and tracks unsaved edits.
package settings
