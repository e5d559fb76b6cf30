// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("imgdex/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	cat, err := imgdex.New(imgdex.WithStore(store))
//
// Uploads go through the SDK upload manager, so large snapshots use
// multipart upload. Listing follows continuation tokens.
package s3
