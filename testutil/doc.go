// Package testutil provides fixtures for imgdex tests.
//
// This package is intended for use in tests and benchmarks only.
//
// # Synthetic JPEG/EXIF buffers
//
//	tiff := testutil.NewTIFF(binary.LittleEndian).
//	    ASCII(0x0110, "TestCam").
//	    Rational(0x829D, 28, 10).
//	    Bytes()
//	jpeg := testutil.JPEG(testutil.ExifSegment(tiff))
//
// # Random catalog records
//
//	rng := testutil.NewRNG(seed)
//	records := rng.Records(100)
package testutil
