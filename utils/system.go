package utils

import (
	"fmt"
	"runtime"
)

// GetMemUsage reports process memory, kept from Notargets-gocfd's
// utils/system.go: the cmd package calls this once, after the
// reconstruction completes, and logs the result.
func GetMemUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	bToMb := func(b uint64) uint64 { return b / 1024 / 1024 }
	return fmt.Sprintf("Alloc = %v MiB TotalAlloc = %v MiB Sys = %v MiB NumGC = %v",
		bToMb(m.Alloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC)
}
