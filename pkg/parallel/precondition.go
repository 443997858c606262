//go:build !forkjoin_debug

package parallel

const debugPreconditions = false
