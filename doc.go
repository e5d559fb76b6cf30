// Package imgdex catalogs the images of a directory tree, typically a notes
// vault, and answers filtered, sorted queries over them.
//
// A Catalog combines four parts:
//
//   - scan walks the tree and reads each image's size, timestamps, header
//     dimensions, EXIF attributes and the notes that reference it
//   - catalog keeps the records in an inverted index of name and tag tokens
//     backed by roaring bitmaps
//   - analysiscache remembers external analysis results per path with an
//     expiry
//   - blobstore persists snapshots and cached analyses locally, in memory,
//     on S3 or on MinIO
//
// # Quick Start
//
//	ctx := context.Background()
//	cat := imgdex.New(
//	    imgdex.WithStore(blobstore.NewLocalStore("./.imgdex")),
//	    imgdex.WithLogger(imgdex.NewTextLogger(slog.LevelInfo)),
//	)
//	defer cat.Close()
//
//	if _, err := cat.Scan(ctx, "./vault"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Queries
//
// Filters combine free text, tags, file types, date, size and quality ranges
// and typed predicates over record fields:
//
//	recs, _ := cat.Query(ctx, catalog.Filter{
//	    SearchText:   "sunset",
//	    SelectedTags: []string{"beach"},
//	    SizeRange:    catalog.AtLeast[int64](1 << 20),
//	    Where:        []metadata.Filter{{Key: "iso", Operator: metadata.OpLessEqual, Value: metadata.Int(400)}},
//	    SortBy:       catalog.SortByDate,
//	    SortOrder:    catalog.Descending,
//	})
//
// # Tags and Analyses
//
//	cat.AddTag(ctx, "attachments/sunset.jpg", model.Tag{Name: "favorite"})
//	cat.SetAnalysis(ctx, "attachments/sunset.jpg", &model.Analysis{Tags: []string{"beach", "sky"}})
//
// SetAnalysis caches the result, so the next Scan attaches it again without
// calling the analysis provider.
//
// # Snapshots
//
//	cat.SaveSnapshot(ctx)
//	cat.LoadSnapshot(ctx) // restores records, tags and analyses
package imgdex
