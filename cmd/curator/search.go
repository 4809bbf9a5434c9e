package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	curator "github.com/kailas-cloud/curator/pkg/sdk"
)

type searchFlags struct {
	tags        []string
	imageURLs   []string
	documentIDs []string
	must        []string
	should      []string
	mustNot     []string

	perPage int
	page    int
	start   int

	topTags int
	smode   string
	options []string
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	f := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search <collection>",
		Short: "Run one search against a collection and print the JSON response",
		Long: `Run one search against a collection and print the JSON response.

Filter values given as k=v are decoded as JSON when possible (numbers, booleans),
otherwise they are sent as strings. A response with status ERROR is printed and
the command still succeeds; transport failures and non-2xx replies exit non-zero.`,
		Example: `  curator search photos --tag dog --tag beach --per-page 10 --page 2
  curator search photos --image-url https://example.com/a.jpg --top-tags 5
  curator search photos --tag nobody --must license=cc --smode dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, opts, err := f.build()
			if err != nil {
				return err
			}

			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			client, err := newClient(cfg.Curator, logger, nil)
			if err != nil {
				return err
			}

			resp, err := client.Search(cmd.Context(), args[0], q, opts)
			if err != nil {
				return err //nolint:wrapcheck // SDK errors already carry the collection
			}

			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fmt.Errorf("encode response: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err //nolint:wrapcheck // stdout write
		},
	}

	fl := cmd.Flags()
	fl.StringArrayVar(&f.tags, "tag", nil, "tag to search for (repeatable)")
	fl.StringArrayVar(&f.imageURLs, "image-url", nil, "image URL to search by (repeatable)")
	fl.StringArrayVar(&f.documentIDs, "document-id", nil, "document ID to search by (repeatable)")
	fl.StringArrayVar(&f.must, "must", nil, "metadata filter k=v that must match (repeatable)")
	fl.StringArrayVar(&f.should, "should", nil, "metadata filter k=v that should match (repeatable)")
	fl.StringArrayVar(&f.mustNot, "must-not", nil, "metadata filter k=v that must not match (repeatable)")
	fl.IntVar(&f.perPage, "per-page", 0, "results per page (default 20)")
	fl.IntVar(&f.page, "page", 0, "1-indexed page number")
	fl.IntVar(&f.start, "start", 0, "0-indexed result offset; overrides --page")
	fl.IntVar(&f.topTags, "top-tags", 0, "number of top tag buckets to aggregate")
	fl.StringVar(&f.smode, "smode", "", "scoring mode, e.g. dot")
	fl.StringArrayVar(&f.options, "option", nil, "extra search option k=v (repeatable)")

	return cmd
}

func (f *searchFlags) build() (curator.Query, *curator.SearchOptions, error) {
	q := curator.Query{
		Tags:        f.tags,
		ImageURLs:   f.imageURLs,
		DocumentIDs: f.documentIDs,
		PerPage:     f.perPage,
		Page:        f.page,
		Start:       f.start,
	}

	must, err := parseKV(f.must)
	if err != nil {
		return q, nil, fmt.Errorf("--must: %w", err)
	}
	should, err := parseKV(f.should)
	if err != nil {
		return q, nil, fmt.Errorf("--should: %w", err)
	}
	mustNot, err := parseKV(f.mustNot)
	if err != nil {
		return q, nil, fmt.Errorf("--must-not: %w", err)
	}
	if must != nil || should != nil || mustNot != nil {
		q.BoolQuery = &curator.BoolQuery{Must: must, Should: should, MustNot: mustNot}
	}

	extra, err := parseKV(f.options)
	if err != nil {
		return q, nil, fmt.Errorf("--option: %w", err)
	}
	if f.topTags == 0 && f.smode == "" && extra == nil {
		return q, nil, nil
	}
	return q, &curator.SearchOptions{
		TopTags:     f.topTags,
		ScoringMode: curator.ScoringMode(f.smode),
		Extra:       extra,
	}, nil
}

// parseKV turns k=v pairs into a map. Values that parse as JSON keep their
// JSON type; anything else is a string. Returns nil for no pairs.
func parseKV(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			out[k] = decoded
		} else {
			out[k] = v
		}
	}
	return out, nil
}
