package exif

// Attributes holds the recognized tags decoded from one IFD. A nil field
// means the tag was not present.
type Attributes struct {
	Make         *Value `json:"make,omitempty"`
	Model        *Value `json:"model,omitempty"`
	DateTime     *Value `json:"dateTime,omitempty"`
	ExposureTime *Value `json:"exposureTime,omitempty"`
	FNumber      *Value `json:"fNumber,omitempty"`
	ISO          *Value `json:"iso,omitempty"`
	FocalLength  *Value `json:"focalLength,omitempty"`
	Flash        *Value `json:"flash,omitempty"`
	Orientation  *Value `json:"orientation,omitempty"`
}

func (a *Attributes) field(t Tag) **Value {
	switch t {
	case TagMake:
		return &a.Make
	case TagModel:
		return &a.Model
	case TagDateTime:
		return &a.DateTime
	case TagExposureTime:
		return &a.ExposureTime
	case TagFNumber:
		return &a.FNumber
	case TagISO:
		return &a.ISO
	case TagFocalLength:
		return &a.FocalLength
	case TagFlash:
		return &a.Flash
	case TagOrientation:
		return &a.Orientation
	default:
		return nil
	}
}

// Set stores v under t. Unrecognized tags are ignored.
func (a *Attributes) Set(t Tag, v Value) {
	if p := a.field(t); p != nil {
		*p = &v
	}
}

// Get returns the value stored under t.
func (a *Attributes) Get(t Tag) (Value, bool) {
	if a == nil {
		return Value{}, false
	}
	p := a.field(t)
	if p == nil || *p == nil {
		return Value{}, false
	}
	return **p, true
}

// Len returns the number of tags present.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	n := 0
	for _, t := range Tags {
		if *a.field(t) != nil {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no recognized tag was found.
func (a *Attributes) IsEmpty() bool { return a.Len() == 0 }

// Each calls fn for every present tag, in Tags order.
func (a *Attributes) Each(fn func(Tag, Value)) {
	if a == nil {
		return
	}
	for _, t := range Tags {
		if v := *a.field(t); v != nil {
			fn(t, *v)
		}
	}
}

// Clone returns a deep copy.
func (a *Attributes) Clone() *Attributes {
	if a == nil {
		return nil
	}
	out := &Attributes{}
	a.Each(out.Set)
	return out
}

// FlashFired reports bit 0 of the flash tag.
func (a *Attributes) FlashFired() (fired, ok bool) {
	v, ok := a.Get(TagFlash)
	if !ok {
		return false, false
	}
	u, ok := v.Uint()
	if !ok {
		return false, false
	}
	return u&1 != 0, true
}
