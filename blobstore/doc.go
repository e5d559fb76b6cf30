// Package blobstore provides the storage abstraction for catalog snapshots
// and cached image analyses.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and ephemeral catalogs
//   - LocalStore: a directory on the local file system
//   - CachingStore: LRU read cache in front of another Store
//   - minio.Store: MinIO and other S3-compatible servers
//   - s3.Store: Amazon S3
//
// # Custom Implementations
//
// Implement the Store interface to support other backends:
//
//	type Store interface {
//	    Get(ctx, name) ([]byte, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Get must return an error satisfying errors.Is(err, ErrNotFound) for a
// missing blob.
package blobstore
