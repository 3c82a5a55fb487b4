// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build darwin

package cacheinfo

import "golang.org/x/sys/unix"

const platformName = "sysctl"

// detectPlatform asks the kernel via sysctl. On Apple silicon the
// hw.l1dcachesize key reports the performance cores.
func detectPlatform() (lineSize, l1Size int) {
	if v, err := unix.SysctlUint64("hw.cachelinesize"); err == nil {
		lineSize = int(v)
	}
	if v, err := unix.SysctlUint64("hw.l1dcachesize"); err == nil {
		l1Size = int(v)
	}
	return lineSize, l1Size
}
