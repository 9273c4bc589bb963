package listing

// Normalize reshapes a raw record into the listing contract of a view.
func Normalize(h Handler, rec Record, view View) Listing {
	return h.Normalize(rec, view)
}

// NormalizeAll normalizes every record with the same handler and view.
func NormalizeAll(h Handler, recs []Record, view View) []Listing {
	out := make([]Listing, 0, len(recs))
	for _, rec := range recs {
		out = append(out, h.Normalize(rec, view))
	}
	return out
}

func (r Record) clone() Record {
	out := make(Record, len(r)+2)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// project keeps the allowed fields that the record carries. Anything not on the
// allow-list never leaves the package.
func project(rec Record, allowed []string) Listing {
	out := make(Listing, len(allowed))
	for _, key := range allowed {
		if v, ok := rec[key]; ok {
			out[key] = v
		}
	}
	return out
}
