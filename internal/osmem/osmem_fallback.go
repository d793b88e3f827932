//go:build !unix && !windows

package osmem

import (
	"fmt"
	"os"
)

// reserve falls back to the Go heap where no mapping API is available.
// The garbage collector does not move large objects, so addresses stay stable.
func reserve(size int) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("osmem: %v", r)
		}
	}()
	return make([]byte, size), nil
}

func pageSize() int {
	return os.Getpagesize()
}
