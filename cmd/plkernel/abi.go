package main

/*
#include <stdint.h>
*/
import "C"

import "unsafe"

// abiClient drives the exported symbols with C-typed arguments, the way a
// foreign host does. Test files cannot use cgo, so they go through it.
type abiClient struct{}

func (abiClient) create(y0, vy0 float64) uint64 {
	return uint64(pl_world_create(C.double(y0), C.double(vy0)))
}

func (abiClient) destroy(h uint64) {
	pl_world_destroy(C.uint64_t(h))
}

func (abiClient) step(h uint64, dt float64, steps uint32) int32 {
	return int32(pl_world_step(C.uint64_t(h), C.double(dt), C.uint32_t(steps)))
}

// getState passes NULL for every output whose pointer is nil.
func (abiClient) getState(h uint64, t, y, vy *float64) int32 {
	return int32(pl_world_get_state(C.uint64_t(h),
		(*C.double)(unsafe.Pointer(t)),
		(*C.double)(unsafe.Pointer(y)),
		(*C.double)(unsafe.Pointer(vy)),
	))
}

func (abiClient) lastErrorCode() int32 {
	return int32(pl_last_error_code())
}

func (abiClient) lastErrorMessage(buf []byte) uint32 {
	var p *C.uint8_t
	if len(buf) > 0 {
		p = (*C.uint8_t)(unsafe.Pointer(&buf[0]))
	}
	return uint32(pl_last_error_message(p, C.uint32_t(len(buf))))
}

func (abiClient) releaseThread() {
	pl_thread_release()
}
