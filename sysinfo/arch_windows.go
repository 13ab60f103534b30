//go:build windows

package sysinfo

import "runtime"

func machineArch() string {
	return runtime.GOARCH
}
