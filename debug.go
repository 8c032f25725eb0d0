package broadphase

import "github.com/pkg/errors"

// assert panics when truth is false. Misuse of proxy ids corrupts the tree,
// so it is never tolerated.
func assert(truth bool, format string, args ...interface{}) {
	if !truth {
		panic(errors.Errorf("broadphase: "+format, args...))
	}
}
