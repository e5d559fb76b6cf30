package main

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/hupe1980/imgdex/codec"
	"github.com/hupe1980/imgdex/exif"
	"github.com/hupe1980/imgdex/internal/mmap"
	"github.com/hupe1980/imgdex/model"
)

func runScan(ctx context.Context, e *env, args []string) error {
	flagSet := pflag.NewFlagSet("scan", pflag.ContinueOnError)
	if err := parseFlags(flagSet, e, args, 1, 1); err != nil {
		return helpOrErr(err)
	}

	cat, _, err := openCatalog(ctx, e, true)
	if err != nil {
		return err
	}
	defer cat.Close()

	res, err := cat.Scan(ctx, flagSet.Arg(0))
	if err != nil {
		return err
	}
	if err := cat.SaveSnapshot(ctx); err != nil {
		return err
	}

	var total int64
	for _, r := range res.Records {
		total += r.Size
	}
	fmt.Fprintf(e.stdout, "cataloged %d images (%s) referenced from %d notes in %s\n",
		len(res.Records), humanize.Bytes(uint64(total)), res.Notes, res.Duration.Round(time.Millisecond))
	for _, f := range res.Failures {
		fmt.Fprintf(e.stderr, "skipped %s: %v\n", f.Path, f.Err)
	}
	return nil
}

func runQuery(ctx context.Context, e *env, args []string) error {
	flagSet := pflag.NewFlagSet("query", pflag.ContinueOnError)
	var qf queryFlags
	qf.register(flagSet)
	if err := parseFlags(flagSet, e, args, 0, 0); err != nil {
		return helpOrErr(err)
	}
	f, err := qf.filter(flagSet)
	if err != nil {
		return err
	}

	cat, _, err := openCatalog(ctx, e, true)
	if err != nil {
		return err
	}
	defer cat.Close()

	recs, err := cat.Query(ctx, f)
	if err != nil {
		return err
	}
	if qf.limit > 0 && len(recs) > qf.limit {
		recs = recs[:qf.limit]
	}
	return printRecords(e, recs, qf.json)
}

func printRecords(e *env, recs []model.Record, asJSON bool) error {
	if asJSON {
		if recs == nil {
			recs = []model.Record{}
		}
		data, err := codec.GoJSON{}.Marshal(recs)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(e.stdout, "%s\n", data)
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tSIZE\tDIMENSIONS\tMODIFIED\tNOTES\tTAGS")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%v\n",
			r.Path, humanize.Bytes(uint64(r.Size)), r.Dimensions,
			humanize.Time(r.Modified), r.UsageCount(), r.TagNames())
	}
	return tw.Flush()
}

func runTags(ctx context.Context, e *env, args []string) error {
	flagSet := pflag.NewFlagSet("tags", pflag.ContinueOnError)
	if err := parseFlags(flagSet, e, args, 0, 0); err != nil {
		return helpOrErr(err)
	}

	cat, _, err := openCatalog(ctx, e, true)
	if err != nil {
		return err
	}
	defer cat.Close()

	type tagCount struct {
		name  string
		count int
	}
	var counts []tagCount
	for name, n := range cat.Tags() {
		counts = append(counts, tagCount{name, n})
	}
	slices.SortFunc(counts, func(a, b tagCount) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	for _, tc := range counts {
		fmt.Fprintf(e.stdout, "%s\t%s\n", humanize.Comma(int64(tc.count)), tc.name)
	}
	return nil
}

func runTag(ctx context.Context, e *env, args []string) error {
	flagSet := pflag.NewFlagSet("tag", pflag.ContinueOnError)
	if err := parseFlags(flagSet, e, args, 2, -1); err != nil {
		return helpOrErr(err)
	}

	cat, _, err := openCatalog(ctx, e, true)
	if err != nil {
		return err
	}
	defer cat.Close()

	path := flagSet.Arg(0)
	for _, name := range flagSet.Args()[1:] {
		added, err := cat.AddTag(ctx, path, model.Tag{Name: name})
		if err != nil {
			return err
		}
		if !added {
			fmt.Fprintf(e.stderr, "%s already tagged %q\n", path, name)
		}
	}
	return cat.SaveSnapshot(ctx)
}

func runUntag(ctx context.Context, e *env, args []string) error {
	flagSet := pflag.NewFlagSet("untag", pflag.ContinueOnError)
	if err := parseFlags(flagSet, e, args, 2, 2); err != nil {
		return helpOrErr(err)
	}

	cat, _, err := openCatalog(ctx, e, true)
	if err != nil {
		return err
	}
	defer cat.Close()

	removed, err := cat.RemoveTag(ctx, flagSet.Arg(0), flagSet.Arg(1))
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%s has no tag with id %q", flagSet.Arg(0), flagSet.Arg(1))
	}
	return cat.SaveSnapshot(ctx)
}

func runExif(_ context.Context, e *env, args []string) error {
	flagSet := pflag.NewFlagSet("exif", pflag.ContinueOnError)
	if err := parseFlags(flagSet, e, args, 1, -1); err != nil {
		return helpOrErr(err)
	}

	for _, path := range flagSet.Args() {
		if err := printExif(e, path); err != nil {
			return err
		}
	}
	return nil
}

func printExif(e *env, path string) error {
	f, err := mmap.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if !exif.IsJPEGExt(filepath.Ext(path)) {
		return fmt.Errorf("%s: not a JPEG file", path)
	}
	attrs, err := exif.Parse(f.Bytes())
	if err != nil {
		fmt.Fprintf(e.stderr, "%s: %v\n", path, err)
	}
	if attrs.IsEmpty() {
		return nil
	}

	fmt.Fprintf(e.stdout, "%s\n", path)
	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	attrs.Each(func(t exif.Tag, v exif.Value) {
		fmt.Fprintf(tw, "  %s\t%s\n", t, v)
	})
	return tw.Flush()
}

func runPurge(ctx context.Context, e *env, args []string) error {
	flagSet := pflag.NewFlagSet("purge", pflag.ContinueOnError)
	if err := parseFlags(flagSet, e, args, 0, 0); err != nil {
		return helpOrErr(err)
	}

	cat, cfg, err := openCatalog(ctx, e, false)
	if err != nil {
		return err
	}
	defer cat.Close()

	n, err := cat.Analyses().Purge(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "removed %d cached analyses older than %s\n", n, cfg.Cache.AnalysisTTL)
	return nil
}

