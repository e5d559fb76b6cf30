package exif

// Tag identifies one of the recognized IFD0 tags.
type Tag uint16

const (
	// TagMake is the camera manufacturer (ASCII).
	TagMake Tag = 0x010F
	// TagModel is the camera model (ASCII).
	TagModel Tag = 0x0110
	// TagOrientation is the image orientation, 1 to 8 (SHORT).
	TagOrientation Tag = 0x0112
	// TagDateTime is the file change time, "YYYY:MM:DD HH:MM:SS" (ASCII).
	TagDateTime Tag = 0x0132
	// TagExposureTime is the exposure time in seconds (RATIONAL).
	TagExposureTime Tag = 0x829A
	// TagFNumber is the aperture f-number (RATIONAL).
	TagFNumber Tag = 0x829D
	// TagISO is the ISO speed rating (SHORT).
	TagISO Tag = 0x8827
	// TagFlash is the flash status bit field; bit 0 means fired (SHORT).
	TagFlash Tag = 0x9209
	// TagFocalLength is the lens focal length in millimeters (RATIONAL).
	TagFocalLength Tag = 0x920A
)

// tagNames doubles as the recognition table: tags not listed here are
// skipped by the decoder.
var tagNames = map[Tag]string{
	TagMake:         "make",
	TagModel:        "model",
	TagOrientation:  "orientation",
	TagDateTime:     "dateTime",
	TagExposureTime: "exposureTime",
	TagFNumber:      "fNumber",
	TagISO:          "iso",
	TagFlash:        "flash",
	TagFocalLength:  "focalLength",
}

// Tags lists the recognized tags in IFD order.
var Tags = []Tag{
	TagMake,
	TagModel,
	TagOrientation,
	TagDateTime,
	TagExposureTime,
	TagFNumber,
	TagISO,
	TagFlash,
	TagFocalLength,
}

// Recognized reports whether the decoder keeps values for tag.
func (t Tag) Recognized() bool {
	_, ok := tagNames[t]
	return ok
}

// String returns the attribute name of the tag, or "" if unrecognized.
func (t Tag) String() string {
	return tagNames[t]
}
