// Package mmap maps image files read-only into memory so the scanner can
// decode headers and EXIF blocks without copying whole files onto the heap.
//
//	f, err := mmap.Open("photo.jpg")
//	if err != nil { ... }
//	defer f.Close()
//	attrs, ok := exif.Decode(f.Bytes())
//
// On Unix the file is mapped with mmap(2) and MADV_SEQUENTIAL is applied.
// Elsewhere the file is read into memory.
package mmap
