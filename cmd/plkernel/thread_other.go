//go:build !linux && !windows

package main

/*
#include <pthread.h>
#include <stdint.h>

static uint64_t pl_thread_self(void) {
	return (uint64_t)(uintptr_t)pthread_self();
}
*/
import "C"

func threadID() uint64 {
	return uint64(C.pl_thread_self())
}
