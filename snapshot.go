package imgdex

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/imgdex/codec"
	"github.com/hupe1980/imgdex/internal/compress"
	"github.com/hupe1980/imgdex/model"
)

// snapshotVersion is bumped on incompatible changes to snapshot.
const snapshotVersion = 1

type snapshot struct {
	Version int            `json:"version"`
	Created time.Time      `json:"created"`
	Records []model.Record `json:"records"`
}

// SaveSnapshot writes every record, in insertion order, to the blob store.
func (c *Catalog) SaveSnapshot(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	start := time.Now()
	name := c.opts.snapshotName

	snap := snapshot{Version: snapshotVersion, Created: time.Now().UTC(), Records: c.index.Records()}
	data, err := encodeSnapshot(&snap, c.opts.codec, c.opts.compression)
	if err == nil {
		err = c.store.Put(ctx, name, data)
	}
	if err != nil {
		err = &SnapshotError{Op: "save", Name: name, cause: err}
	}

	c.opts.metricsCollector.RecordSnapshot(len(data), time.Since(start), err)
	c.opts.logger.LogSnapshot(ctx, "save", name, len(snap.Records), err)
	return err
}

// LoadSnapshot replaces the catalog contents with the stored snapshot.
// A missing snapshot yields an error matching ErrNotFound.
func (c *Catalog) LoadSnapshot(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	start := time.Now()
	name := c.opts.snapshotName

	var snap snapshot
	data, err := c.store.Get(ctx, name)
	if err == nil {
		err = decodeSnapshot(data, &snap)
	}
	if err != nil {
		err = &SnapshotError{Op: "load", Name: name, cause: translateError(err)}
	} else {
		c.mu.Lock()
		c.index.IndexAll(snap.Records)
		c.mu.Unlock()
	}

	c.opts.metricsCollector.RecordSnapshot(len(data), time.Since(start), err)
	c.opts.logger.LogSnapshot(ctx, "load", name, len(snap.Records), err)
	return err
}

func encodeSnapshot(snap *snapshot, c codec.Codec, t compress.Type) ([]byte, error) {
	raw, err := codec.MarshalEnvelope(c, snap)
	if err != nil {
		return nil, err
	}
	return compress.Encode(raw, t)
}

func decodeSnapshot(data []byte, snap *snapshot) error {
	raw, err := compress.Decode(data)
	if err != nil {
		return err
	}
	if _, err := codec.UnmarshalEnvelope(raw, snap); err != nil {
		return err
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	return nil
}
