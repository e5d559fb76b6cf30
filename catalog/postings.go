package catalog

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// postings maps a key (token, format, tag name) to the ids carrying it.
// Keys whose bitmap becomes empty are deleted.
type postings map[string]*roaring.Bitmap

func (p postings) add(key string, id uint32) {
	bm, ok := p[key]
	if !ok {
		bm = roaring.New()
		p[key] = bm
	}
	bm.Add(id)
}

func (p postings) remove(key string, id uint32) {
	bm, ok := p[key]
	if !ok {
		return
	}
	bm.Remove(id)
	if bm.IsEmpty() {
		delete(p, key)
	}
}

// union returns the union of the bitmaps for keys. Missing keys contribute
// nothing.
func (p postings) union(keys []string) *roaring.Bitmap {
	out := roaring.New()
	for _, k := range keys {
		if bm, ok := p[k]; ok {
			out.Or(bm)
		}
	}
	return out
}
