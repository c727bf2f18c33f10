package entity

// Districts is the fixed set of Andhra Pradesh districts the digest covers.
// Order matters: selectors and the prefetch worker iterate it as-is.
var Districts = []string{
	"Anantapur",
	"Chittoor",
	"East Godavari",
	"Guntur",
	"Krishna",
	"Kurnool",
	"Prakasam",
	"Srikakulam",
	"Visakhapatnam",
	"West Godavari",
}

// IsValidDistrict reports whether name is one of the supported districts.
// Matching is exact; district names are treated as opaque identifiers.
func IsValidDistrict(name string) bool {
	for _, d := range Districts {
		if d == name {
			return true
		}
	}
	return false
}
