// Package debug exposes the build-time debug flag shared by all components.
package debug

// Assert panics if condition is false and the debug build tag is set.
// It does nothing in release builds.
func Assert(condition bool, message ...string) {
	if Debug && !condition {
		if len(message) > 0 {
			panic(message[0])
		}
		panic("assertion failed")
	}
}
