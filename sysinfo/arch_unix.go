//go:build !windows

package sysinfo

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// machineArch asks the kernel for its machine string, e.g. "x86_64"
// or "aarch64". Falls back to the build target on failure.
func machineArch() string {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return runtime.GOARCH
	}
	return unix.ByteSliceToString(uname.Machine[:])
}
