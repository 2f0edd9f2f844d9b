package main

import "golang.org/x/sys/unix"

// threadID identifies the OS thread running the current cgo call.
func threadID() uint64 {
	return uint64(unix.Gettid())
}
