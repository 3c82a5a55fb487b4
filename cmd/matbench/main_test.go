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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInvalidArguments(t *testing.T) {
	testCases := [][]string{
		{"bench", "--size", "0"},
		{"bench", "--size", "4097"},
		{"bench", "--threads", "-1"},
		{"bench", "--iterations", "0"},
		{"bench", "--block-size", "-2"},
		{"bench", "abc"},
		{"bench", "0"},
		{"bench", "5000"},
		{"bench", "16", "32"},
		{"bench", "--unknown"},
		{"profile", "--extra-size", "-3"},
		{"profile", "--sizes", "8,0"},
		{"profile", "99999"},
		{"info", "extra"},
	}
	for _, args := range testCases {
		t.Run(strings.Join(args, "_"), func(t *testing.T) {
			if _, err := run(t, args...); err == nil {
				t.Errorf("matbench %v succeeded, want error", args)
			}
		})
	}
}

func TestBench(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "bench.csv")
	for _, extra := range [][]string{nil, {"--pool"}} {
		args := append([]string{"bench", "24", "--iterations", "1", "--threads", "2", "--seed", "7", "--output", csvPath}, extra...)
		out, err := run(t, args...)
		if err != nil {
			t.Fatalf("matbench %v: %v\n%s", args, err, out)
		}
		for _, want := range []string{"Matrix size: 24 x 24", "Naive", "Transpose", "Blocked", "Results saved to"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// One header, then three rows per run.
	if len(lines) != 7 {
		t.Fatalf("CSV has %d lines, want 7:\n%s", len(lines), data)
	}
	if lines[0] != "method,sequential_ms,concurrent_ms,speedup,num_threads" {
		t.Errorf("CSV header = %q", lines[0])
	}
	if strings.Count(string(data), "method,") != 1 {
		t.Errorf("header repeated:\n%s", data)
	}
}

func TestProfile(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "profile.csv")
	out, err := run(t, "profile", "12", "--sizes", "8,16", "--iterations", "2", "--threads", "3", "--seed", "9", "--output", csvPath)
	if err != nil {
		t.Fatalf("profile: %v\n%s", err, out)
	}
	for _, want := range []string{"PROFILING RESULTS", "matrix_create_8x8", "matrix_free_12x12", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "section,time_ms\n") {
		t.Errorf("CSV does not start with header:\n%s", data)
	}
	if !strings.Contains(string(data), "matrix_multiply_blocked_parallel_t3_16x16,") {
		t.Errorf("CSV missing blocked t3 row:\n%s", data)
	}
}

func TestInfo(t *testing.T) {
	out, err := run(t, "info")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"GOOS/GOARCH", "CPU features", "Cache line size", "Hardware concurrency"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
