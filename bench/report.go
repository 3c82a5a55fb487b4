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

package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ajroetker/go-locality/cacheinfo"
	"github.com/ajroetker/go-locality/matmul"
)

// CSVHeader is the first line of a results file.
var CSVHeader = []string{"method", "sequential_ms", "concurrent_ms", "speedup", "num_threads"}

var (
	titleCaser = cases.Title(language.English)
	printer    = message.NewPrinter(language.English)
)

// titled returns the display name of m, e.g. "Blocked".
func titled(m matmul.Method) string {
	return titleCaser.String(m.String())
}

// WriteCacheReport prints the detected cache parameters and the derived
// tiling and threading choices for cfg.
func WriteCacheReport(w io.Writer, info cacheinfo.Info, cfg Config) error {
	block := cfg.BlockSize
	if block <= 0 {
		block = info.L1BlockSize
	}
	_, err := printer.Fprintf(w,
		"Cache Information:\n"+
			"  Cache line size: %d bytes (%s)\n"+
			"  L1 data cache: %d bytes (%d KB) (%s)\n"+
			"  Elements per cache line (float64): %d\n"+
			"  Block size for tiling: %d x %d\n"+
			"  Threads: %d\n"+
			"  Hardware concurrency: %d\n\n",
		info.CacheLineSize, info.CacheLineSource,
		info.L1DataCacheSize, info.L1DataCacheSize/1024, info.L1Source,
		info.DoublesPerLine(),
		block, block,
		cfg.threads(),
		info.HardwareConcurrency)
	return err
}

const (
	tableTop    = "╔══════════════════════════════════════════════════════════════════════╗\n"
	tableTitle  = "║         Concurrent Matrix Multiplication Benchmark Results           ║\n"
	tableMid    = "╠══════════════════════════════════════════════════════════════════════╣\n"
	tableHeader = "║ Method      │ Sequential (ms) │ Concurrent (ms) │ Speedup │ Threads  ║\n"
	tableSep    = "╠═════════════╪═════════════════╪═════════════════╪═════════╪══════════╣\n"
	tableBottom = "╚══════════════════════════════════════════════════════════════════════╝\n"
)

// WriteTable prints results as a boxed table. Times use locale digit
// grouping so large sizes stay readable.
func WriteTable(w io.Writer, results []Result) error {
	for _, s := range []string{"\n", tableTop, tableTitle, tableMid, tableHeader, tableSep} {
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}
	for _, r := range results {
		_, err := printer.Fprintf(w, "║ %-11s │ %15.2f │ %15.2f │ %7.2fx│ %8d ║\n",
			titled(r.Method), r.SequentialMs, r.ConcurrentMs, r.Speedup, r.Threads)
		if err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, tableBottom)
	return err
}

// WriteCSV writes one row per result, with 3 decimal places. The header
// is included only if header is true.
func WriteCSV(w io.Writer, results []Result, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(CSVHeader); err != nil {
			return err
		}
	}
	for _, r := range results {
		row := []string{
			titled(r.Method),
			strconv.FormatFloat(r.SequentialMs, 'f', 3, 64),
			strconv.FormatFloat(r.ConcurrentMs, 'f', 3, 64),
			strconv.FormatFloat(r.Speedup, 'f', 3, 64),
			strconv.Itoa(r.Threads),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendCSV appends results to filename, creating it if needed. The
// header is written only when the file is new or empty, so repeated runs
// accumulate rows under one header.
func AppendCSV(filename string, results []Result) (err error) {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("bench: failed to open %s for writing: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	st, err := f.Stat()
	if err != nil {
		return err
	}
	return WriteCSV(f, results, st.Size() == 0)
}
