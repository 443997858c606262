//go:build forkjoin_debug

package parallel

// Debug builds treat precondition violations as programming errors.
const debugPreconditions = true
