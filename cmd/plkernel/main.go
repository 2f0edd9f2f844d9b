// Command plkernel builds the physicslab kernel as a C shared library:
//
//	go build -buildmode=c-shared -o libphysicslab_kernel.so ./cmd/plkernel
//
// The exported symbols are declared in include/physicslab_kernel.h. Each OS
// thread calling into the library gets its own last-error record.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"github.com/san-kum/physicslab/internal/kernel"
)

func caller() *kernel.Caller {
	return kernel.Default().Caller(threadID())
}

//export pl_world_create
func pl_world_create(y0, vy0 C.double) C.uint64_t {
	return C.uint64_t(caller().WorldCreate(float64(y0), float64(vy0)))
}

//export pl_world_destroy
func pl_world_destroy(handle C.uint64_t) {
	caller().WorldDestroy(uint64(handle))
}

//export pl_world_step
func pl_world_step(handle C.uint64_t, dt C.double, steps C.uint32_t) C.int32_t {
	return C.int32_t(caller().WorldStep(uint64(handle), float64(dt), uint32(steps)))
}

//export pl_world_get_state
func pl_world_get_state(handle C.uint64_t, t, y, vy *C.double) C.int32_t {
	st := caller().WorldGetState(uint64(handle),
		(*float64)(unsafe.Pointer(t)),
		(*float64)(unsafe.Pointer(y)),
		(*float64)(unsafe.Pointer(vy)),
	)
	return C.int32_t(st)
}

//export pl_last_error_code
func pl_last_error_code() C.int32_t {
	return C.int32_t(caller().LastErrorCode())
}

//export pl_last_error_message
func pl_last_error_message(buf *C.uint8_t, bufLen C.uint32_t) C.uint32_t {
	return C.uint32_t(caller().LastErrorMessage(cBuffer(buf, bufLen)))
}

//export pl_thread_release
func pl_thread_release() {
	kernel.Default().Release(threadID())
}

// cBuffer views a caller-owned buffer as a byte slice. A NULL buffer is
// treated as empty.
func cBuffer(buf *C.uint8_t, n C.uint32_t) []byte {
	if buf == nil || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(n))
}

func main() {}
