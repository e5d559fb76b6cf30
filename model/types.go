package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/hupe1980/imgdex/exif"
	"github.com/hupe1980/imgdex/metadata"
)

// TagCategory records where a tag came from.
type TagCategory string

const (
	// TagManual is a tag added by a user.
	TagManual TagCategory = "manual"
	// TagAuto is a tag produced by an analysis provider.
	TagAuto TagCategory = "auto"
)

// DefaultAutoTagConfidence is assigned to auto tags that arrive without a
// confidence.
const DefaultAutoTagConfidence = 0.8

// Tag is a label attached to a record. Names are unique within a record.
type Tag struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Category   TagCategory `json:"category"`
	Confidence *float64    `json:"confidence,omitempty"`
}

// Dimensions is the pixel size of an image. Zero means unknown.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String returns "WxH".
func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Quality is the quality assessment part of an analysis.
type Quality struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues,omitempty"`
}

// Analysis is the result of an external image analysis provider.
type Analysis struct {
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
	Quality     *Quality `json:"quality,omitempty"`
}

// Clone returns a deep copy.
func (a *Analysis) Clone() *Analysis {
	if a == nil {
		return nil
	}
	out := &Analysis{
		Tags:        slices.Clone(a.Tags),
		Description: a.Description,
	}
	if a.Quality != nil {
		out.Quality = &Quality{Score: a.Quality.Score, Issues: slices.Clone(a.Quality.Issues)}
	}
	return out
}

// Record is one cataloged image. Path is the unique key.
type Record struct {
	Path         string           `json:"path"`
	Name         string           `json:"name"`
	Size         int64            `json:"size"`
	Dimensions   Dimensions       `json:"dimensions"`
	Format       string           `json:"format"`
	Created      time.Time        `json:"created"`
	Modified     time.Time        `json:"modified"`
	Tags         []Tag            `json:"tags,omitempty"`
	Description  string           `json:"description,omitempty"`
	Exif         *exif.Attributes `json:"exif,omitempty"`
	Analysis     *Analysis        `json:"analysis,omitempty"`
	RelatedNotes []string         `json:"relatedNotes,omitempty"`
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.Tags = slices.Clone(r.Tags)
	for i := range out.Tags {
		if c := out.Tags[i].Confidence; c != nil {
			v := *c
			out.Tags[i].Confidence = &v
		}
	}
	out.Exif = r.Exif.Clone()
	out.Analysis = r.Analysis.Clone()
	out.RelatedNotes = slices.Clone(r.RelatedNotes)
	return out
}

// UsageCount is the number of notes that reference the image.
func (r *Record) UsageCount() int { return len(r.RelatedNotes) }

// HasNotes reports whether any note references the image.
func (r *Record) HasNotes() bool { return len(r.RelatedNotes) > 0 }

// QualityScore returns the analysed quality score, or 0 when absent.
func (r *Record) QualityScore() float64 {
	if r.Analysis == nil || r.Analysis.Quality == nil {
		return 0
	}
	return r.Analysis.Quality.Score
}

// TagNames returns the tag names in order.
func (r *Record) TagNames() []string {
	names := make([]string, len(r.Tags))
	for i := range r.Tags {
		names[i] = r.Tags[i].Name
	}
	return names
}

// HasTag reports whether a tag with the given name is attached.
func (r *Record) HasTag(name string) bool {
	return slices.ContainsFunc(r.Tags, func(t Tag) bool { return t.Name == name })
}

// AddTag appends tag unless a tag with the same name exists. It reports
// whether the tag was added.
func (r *Record) AddTag(tag Tag) bool {
	if tag.Name == "" || r.HasTag(tag.Name) {
		return false
	}
	if tag.Category == "" {
		tag.Category = TagManual
	}
	r.Tags = append(r.Tags, tag)
	return true
}

// RemoveTag removes the tag with the given id. It reports whether a tag was
// removed.
func (r *Record) RemoveTag(id string) bool {
	i := slices.IndexFunc(r.Tags, func(t Tag) bool { return t.ID == id })
	if i < 0 {
		return false
	}
	r.Tags = slices.Delete(r.Tags, i, i+1)
	return true
}

// ApplyAutoTags adds analysis tags with ids "ai-<path>-<i>" and the default
// confidence. Names already present are skipped. It returns the number of
// tags added.
func (r *Record) ApplyAutoTags(names []string) int {
	added := 0
	for i, name := range names {
		conf := DefaultAutoTagConfidence
		tag := Tag{
			ID:         fmt.Sprintf("ai-%s-%d", r.Path, i),
			Name:       name,
			Category:   TagAuto,
			Confidence: &conf,
		}
		if r.AddTag(tag) {
			added++
		}
	}
	return added
}

// Document field names produced by Record.Document.
const (
	FieldFormat      = "format"
	FieldName        = "name"
	FieldSize        = "size"
	FieldWidth       = "width"
	FieldHeight      = "height"
	FieldCreated     = "created"
	FieldModified    = "modified"
	FieldQuality     = "quality"
	FieldUsage       = "usage"
	FieldTags        = "tags"
	FieldMake        = "make"
	FieldModel       = "model"
	FieldISO         = "iso"
	FieldFNumber     = "fnumber"
	FieldFocalLength = "focal_length"
	FieldExposure    = "exposure_time"
	FieldFlash       = "flash"
)

// Document projects the filterable fields of the record. Timestamps are
// Unix seconds. EXIF fields appear only when decoded.
func (r *Record) Document() metadata.Document {
	doc := metadata.Document{
		FieldFormat:   metadata.String(r.Format),
		FieldName:     metadata.String(r.Name),
		FieldSize:     metadata.Int(r.Size),
		FieldWidth:    metadata.Int(int64(r.Dimensions.Width)),
		FieldHeight:   metadata.Int(int64(r.Dimensions.Height)),
		FieldCreated:  metadata.Int(r.Created.Unix()),
		FieldModified: metadata.Int(r.Modified.Unix()),
		FieldQuality:  metadata.Float(r.QualityScore()),
		FieldUsage:    metadata.Int(int64(r.UsageCount())),
		FieldTags:     metadata.Strings(r.TagNames()...),
	}

	if r.Exif == nil {
		return doc
	}
	if v, ok := r.Exif.Get(exif.TagMake); ok {
		doc[FieldMake] = metadata.String(v.String())
	}
	if v, ok := r.Exif.Get(exif.TagModel); ok {
		doc[FieldModel] = metadata.String(v.String())
	}
	for _, f := range []struct {
		tag exif.Tag
		key string
	}{
		{exif.TagISO, FieldISO},
		{exif.TagFNumber, FieldFNumber},
		{exif.TagFocalLength, FieldFocalLength},
		{exif.TagExposureTime, FieldExposure},
	} {
		v, ok := r.Exif.Get(f.tag)
		if !ok {
			continue
		}
		if u, ok := v.Uint(); ok {
			doc[f.key] = metadata.Int(int64(u))
		} else if x, ok := v.Float(); ok {
			doc[f.key] = metadata.Float(x)
		}
	}
	if fired, ok := r.Exif.FlashFired(); ok {
		doc[FieldFlash] = metadata.Bool(fired)
	}
	return doc
}
