package utils

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// AtomicAddFloat64 performs *dst += delta using a compare-and-swap loop on
// the float's bit pattern. It backs the down-sample accumulation in
// operator.DownSampleConstraints; the MC-index bit propagation in
// isosurface uses AtomicOrInt32 below.
func AtomicAddFloat64(dst *float64, delta float64) {
	addr := (*uint64)(unsafe.Pointer(dst))
	for {
		old := atomic.LoadUint64(addr)
		newV := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(addr, old, newV) {
			return
		}
	}
}

// AtomicOrInt32 performs *dst |= bits using a compare-and-swap loop. Node
// mcIndex fields are declared int32 (rather than the conceptually natural
// uint8) specifically so ancestor bit-propagation can use this helper
// instead of a mutex.
func AtomicOrInt32(dst *int32, bits int32) {
	for {
		old := atomic.LoadInt32(dst)
		newV := old | bits
		if old == newV {
			return
		}
		if atomic.CompareAndSwapInt32(dst, old, newV) {
			return
		}
	}
}
