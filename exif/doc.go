// Package exif decodes camera metadata from the EXIF block of a JPEG file.
//
// The decoder works on the raw file bytes. It walks the JPEG marker chain to
// the first APP1 segment carrying the "Exif\0\0" identifier, reads the TIFF
// header that follows (II or MM byte order), and decodes the primary image
// directory (IFD0). Sub-directories such as the GPS IFD are not followed.
//
// Only the tags in Tags are kept:
//
//	make, model, dateTime, exposureTime, fNumber, iso,
//	focalLength, flash, orientation
//
// Decode is best-effort and never fails. Images without metadata (PNG
// screenshots, stripped JPEGs) are a normal outcome, reported as (nil, false):
//
//	attrs, ok := exif.DecodeFile(data, "jpg")
//	if ok {
//	    if v, ok := attrs.Get(exif.TagModel); ok {
//	        fmt.Println(v)
//	    }
//	}
//
// Callers that need to tell "not a photo" from "corrupt photo" use Parse,
// which reports ErrNotJPEG, ErrNoExif or ErrCorrupt.
package exif
