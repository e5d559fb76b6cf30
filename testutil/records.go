package testutil

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/hupe1980/imgdex/exif"
	"github.com/hupe1980/imgdex/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the given seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

var (
	words   = []string{"sunset", "beach", "forest", "city", "portrait", "mountain", "river", "night", "snow", "garden"}
	formats = []string{"jpg", "jpeg", "png", "gif", "webp", "bmp"}
	cameras = []struct{ make, model string }{
		{"Canon", "EOS R5"},
		{"NIKON CORPORATION", "NIKON Z 6"},
		{"FUJIFILM", "X-T4"},
	}
)

// Epoch is the earliest creation time Records produces.
var Epoch = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// Records returns n catalog records with unique paths and random names,
// tags, sizes, timestamps, notes and quality scores. JPEG records carry
// EXIF attributes.
func (r *RNG) Records(n int) []model.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Record, n)
	for i := range out {
		word := words[r.rand.Intn(len(words))]
		format := formats[r.rand.Intn(len(formats))]
		name := fmt.Sprintf("%s-%04d.%s", word, i, format)
		created := Epoch.Add(time.Duration(r.rand.Intn(365*24)) * time.Hour)

		rec := model.Record{
			Path:       "attachments/" + name,
			Name:       name,
			Format:     format,
			Size:       int64(1024 + r.rand.Intn(10<<20)),
			Dimensions: model.Dimensions{Width: 320 + r.rand.Intn(4000), Height: 240 + r.rand.Intn(3000)},
			Created:    created,
			Modified:   created.Add(time.Duration(r.rand.Intn(48)) * time.Hour),
		}

		for j := range r.rand.Intn(3) {
			rec.AddTag(model.Tag{ID: fmt.Sprintf("tag-%d-%d", i, j), Name: words[r.rand.Intn(len(words))]})
		}
		for j := range r.rand.Intn(3) {
			rec.RelatedNotes = append(rec.RelatedNotes, fmt.Sprintf("notes/%d-%d.md", i, j))
		}
		if r.rand.Intn(2) == 0 {
			rec.Analysis = &model.Analysis{Quality: &model.Quality{Score: float64(r.rand.Intn(101)) / 100}}
		}
		if exif.IsJPEGExt(format) {
			cam := cameras[r.rand.Intn(len(cameras))]
			rec.Exif = &exif.Attributes{}
			rec.Exif.Set(exif.TagMake, exif.ASCII(cam.make))
			rec.Exif.Set(exif.TagModel, exif.ASCII(cam.model))
			rec.Exif.Set(exif.TagISO, exif.Short(uint16(100<<r.rand.Intn(6))))
		}
		out[i] = rec
	}
	return out
}
