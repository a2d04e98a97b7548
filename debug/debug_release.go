//go:build !debug

package debug

// Debug is true when the binary is built with the debug tag.
const Debug = false
