// Package cli holds what the tlrun commands share: flag and environment
// configuration, the stdin/stdout JSON protocol and the debug logger.
package cli
