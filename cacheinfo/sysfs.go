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

package cacheinfo

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// sysfsCacheDir is where Linux describes the caches of the first CPU.
const sysfsCacheDir = "/sys/devices/system/cpu/cpu0/cache"

// readSysfsCache scans root/index*/ for the level 1 data (or unified) cache.
// Zero means the value was not found.
func readSysfsCache(root string) (lineSize, l1Size int) {
	dirs, err := filepath.Glob(filepath.Join(root, "index*"))
	if err != nil {
		return 0, 0
	}
	for _, dir := range dirs {
		level := readSysfsValue(dir, "level")
		if level != "1" {
			continue
		}
		switch readSysfsValue(dir, "type") {
		case "Data", "Unified":
		default:
			continue
		}
		if n, ok := parseCacheSize(readSysfsValue(dir, "size")); ok {
			l1Size = n
		}
		if n, err := strconv.Atoi(readSysfsValue(dir, "coherency_line_size")); err == nil && n > 0 {
			lineSize = n
		}
		break
	}
	return lineSize, l1Size
}

func readSysfsValue(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// parseCacheSize parses sysfs sizes such as "32K", "1024K" or "8M".
func parseCacheSize(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	mult := 1
	switch s[len(s)-1] {
	case 'K', 'k':
		mult = 1 << 10
		s = s[:len(s)-1]
	case 'M', 'm':
		mult = 1 << 20
		s = s[:len(s)-1]
	case 'G', 'g':
		mult = 1 << 30
		s = s[:len(s)-1]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n * mult, true
}
