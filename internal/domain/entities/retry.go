package entities

import "time"

// Poll runs op up to attempts times, sleeping delay between failures, and
// reports whether op eventually succeeded. It replaces the fixed
// sleep-in-a-loop blocks older revisions used for Gerrit's eventual
// consistency (refs/meta/config, group creation).
func Poll(attempts int, delay time.Duration, op func() bool) bool {
	for i := 0; i < attempts; i++ {
		if op() {
			return true
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return false
}

// PollErr is Poll for operations that yield a value. The last error is
// returned after the attempt budget is exhausted.
func PollErr[T any](attempts int, delay time.Duration, op func() (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	for i := 0; i < attempts; i++ {
		result, err = op()
		if err == nil {
			return result, nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return result, err
}
