// Package model defines the catalog record and its parts.
//
// A Record is created by the scanner (or any other caller) after decoding,
// handed to the catalog index, and read back as a deep copy. Records carry
// identity (Path), descriptive fields fixed at scan time, a mutable tag list,
// optional EXIF attributes, an optional analysis and the notes that
// reference the image.
//
// Tag operations keep names unique within a record:
//
//	rec.AddTag(model.Tag{ID: "t1", Name: "beach"})
//	rec.ApplyAutoTags([]string{"beach", "sunset"}) // adds "sunset" only
//	rec.RemoveTag("t1")
package model
