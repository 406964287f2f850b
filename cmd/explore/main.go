// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tomtom215/pantry/internal/explorer"
	"github.com/tomtom215/pantry/internal/logging"
)

const previewWidth = 60

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	url      string
	query    string
	tagQuery string
	include  string
	exclude  string
	timeout  time.Duration
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("explore", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.url, "url", "http://localhost:8080/api/v1/recipes", "catalog URL")
	fs.StringVar(&o.query, "q", "", "recipe name filter (case-insensitive substring)")
	fs.StringVar(&o.tagQuery, "tag-q", "", "tag panel filter")
	fs.StringVar(&o.include, "include", "", "comma-separated tags that must be true")
	fs.StringVar(&o.exclude, "exclude", "", "comma-separated tags that must not be true")
	fs.DurationVar(&o.timeout, "timeout", 30*time.Second, "fetch timeout")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return o, nil
}

// run returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logging.Init(logging.Config{Level: "warn", Format: "console", Output: stderr})

	o, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	ex := explorer.New(explorer.HTTPFetcher(&http.Client{Timeout: o.timeout}, o.url))
	ex.SetQuery(o.query)
	ex.SetTagQuery(o.tagQuery)
	for tag, state := range explorer.FilterFromLists(splitList(o.include), splitList(o.exclude)) {
		ex.SetTagState(tag, state)
	}

	loadErr := ex.Load(ctx)
	render(stdout, ex.View())
	if loadErr != nil {
		logging.Error().Err(loadErr).Str("url", o.url).Msg("catalog fetch failed")
		return 1
	}
	return 0
}

func render(w io.Writer, v explorer.View) {
	switch v.State {
	case explorer.StateFailed:
		fmt.Fprintf(w, "Could not load recipes: %s\n", v.Error)
		return
	case explorer.StateLoading:
		fmt.Fprintln(w, "Loading...")
		return
	}

	if v.Empty {
		fmt.Fprintf(w, "No recipes match (%d in catalog).\n", v.Total)
	} else {
		fmt.Fprintf(w, "%d of %d recipes\n\n", len(v.Recipes), v.Total)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tRATING\tPREVIEW")
		for i := range v.Recipes {
			r := &v.Recipes[i]
			fmt.Fprintf(tw, "%s\t%.1f\t%s\n", r.Name, r.Rating, truncate(r.Preview(), previewWidth))
		}
		_ = tw.Flush()
	}
	if v.Dropped > 0 {
		fmt.Fprintf(w, "\n%d malformed records skipped\n", v.Dropped)
	}

	fmt.Fprintln(w, "\nTags:")
	if len(v.Tags) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, t := range v.Tags {
		fmt.Fprintf(w, "  %s %s\n", stateMark(t.State), t.Name)
	}
}

func stateMark(s explorer.TriState) string {
	switch s {
	case explorer.Include:
		return "[+]"
	case explorer.Exclude:
		return "[-]"
	default:
		return "[ ]"
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
