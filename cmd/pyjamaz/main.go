// Command pyjamaz is a thin CLI wrapper around the pyjamaz search engine.
// Flag parsing and file I/O live entirely in this file — the engine
// itself never touches a flag or a filesystem path beyond the result
// cache.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pyjamaz/pyjamaz"
)

func main() {
	var (
		maxBytesFlag = flag.String("max-bytes", "", `cap on output size, e.g. "200KB" or "2MB"`)
		maxDiffFlag  = flag.Float64("max-diff", -1, "cap on the fidelity metric (lower is better); negative means unconstrained")
		metricFlag   = flag.String("metric", "dssim", "fidelity metric: none, dssim, ssimulacra2")
		formatsFlag  = flag.String("formats", "", "comma-separated candidate formats (jpeg,webp,avif,png); empty means all")
		workersFlag  = flag.Int("workers", 0, "concurrent format searches (0 = engine default)")
		cacheDirFlag = flag.String("cache-dir", "", "result cache directory; empty uses the default, \"-\" disables caching")
		verbose      = flag.Bool("v", false, "log progress to stderr")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <input> <output>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	inPath, outPath := flag.Arg(0), flag.Arg(1)

	opts := pyjamaz.DefaultOptions()
	if *verbose {
		l := pyjamaz.NewLogger()
		opts.Logger = &l
	}
	if *cacheDirFlag == "-" {
		opts.CacheDir = ""
	} else if *cacheDirFlag != "" {
		opts.CacheDir = *cacheDirFlag
	}

	if *maxBytesFlag != "" {
		n, err := parseSize(*maxBytesFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalid -max-bytes:", err)
			os.Exit(2)
		}
		opts.Constraints.MaxBytes = &n
	}
	if *maxDiffFlag >= 0 {
		d := *maxDiffFlag
		opts.Constraints.MaxDiff = &d
	}
	metric, err := parseMetric(*metricFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	opts.Constraints.Metric = metric
	if *formatsFlag != "" {
		formats, err := parseFormats(*formatsFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		opts.Constraints.Formats = formats
	}
	opts.Constraints.Workers = *workersFlag

	data, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read input:", err)
		os.Exit(1)
	}

	sel, err := pyjamaz.Optimize(context.Background(), data, opts)
	if err != nil && !errors.Is(err, pyjamaz.ErrNoCandidateMetConstraints) {
		fmt.Fprintln(os.Stderr, "optimize:", err)
		os.Exit(1)
	}
	if sel == nil || sel.Winner == nil {
		fmt.Fprintln(os.Stderr, "optimize: no candidate produced")
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, sel.Winner.Data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write output:", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d bytes, diff=%.4f, passed=%v, cache_hit=%v\n",
		sel.Winner.Format, sel.Winner.Bytes, sel.Winner.Diff, sel.Passed, sel.CacheHit)
	if !sel.Passed {
		os.Exit(3)
	}
}

// parseSize parses human sizes like "200KB", "2MB", or a bare byte count.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "GB"):
		mult = 1 << 30
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		mult = 1 << 20
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		mult = 1 << 10
		s = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, err)
	}
	return int64(n * float64(mult)), nil
}

func parseMetric(s string) (pyjamaz.MetricKind, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return pyjamaz.MetricNone, nil
	case "dssim":
		return pyjamaz.MetricDSSIM, nil
	case "ssimulacra2":
		return pyjamaz.MetricSSIMULACRA2, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", s)
	}
}

func parseFormats(s string) ([]pyjamaz.Format, error) {
	var out []pyjamaz.Format
	for _, tok := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "jpeg", "jpg":
			out = append(out, pyjamaz.JPEG)
		case "webp":
			out = append(out, pyjamaz.WebP)
		case "avif":
			out = append(out, pyjamaz.AVIF)
		case "png":
			out = append(out, pyjamaz.PNG)
		default:
			return nil, fmt.Errorf("unknown format %q", tok)
		}
	}
	return out, nil
}
