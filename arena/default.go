package arena

import "sync"

var (
	defaultOnce sync.Once
	defaultRes  Resource
)

// Default returns the process-wide default resource. It is constructed at
// most once, even under concurrent first use, and every call returns the
// same identity. The instance is deliberately never torn down: values
// built against it stay valid through any shutdown ordering of other
// package-level state.
func Default() Resource {
	defaultOnce.Do(func() {
		defaultRes = &Heap{}
	})
	return defaultRes
}
