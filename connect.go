package camouflage

// Overlaps reports whether r and o share at least one column.
func (r Range) Overlaps(o Range) bool {
	return r.Hi >= o.Lo && o.Hi >= r.Lo
}

// Connected reports whether r and o touch end to start without sharing a
// column.
func (r Range) Connected(o Range) bool {
	return int(r.Hi)+1 == int(o.Lo) || int(o.Hi)+1 == int(r.Lo)
}

func (l RangeList) Overlaps(o RangeList) bool {
	for _, r := range l {
		for _, other := range o {
			if r.Overlaps(other) {
				return true
			}
		}
	}
	return false
}

func (l RangeList) Connected(o RangeList) bool {
	for _, r := range l {
		for _, other := range o {
			if r.Connected(other) {
				return true
			}
		}
	}
	return false
}

// Overlaps reports whether s and o have overlapping runs on a shared row.
func (s Segment) Overlaps(o Segment) bool {
	small, large := s, o
	if len(small) > len(large) {
		small, large = large, small
	}
	for y, ranges := range small {
		if other, ok := large[y]; ok && ranges.Overlaps(other) {
			return true
		}
	}
	return false
}

// Connected reports whether s and o touch without overlapping: two runs on
// a shared row meet end to start, or a run of s shares a column with a run
// of o on the row directly above or below. Vertical contact is checked on
// every row of s. Overlapping segments are never connected.
func (s Segment) Connected(o Segment) bool {
	if s.Overlaps(o) {
		return false
	}
	for y, ranges := range s {
		if other, ok := o[y]; ok && ranges.Connected(other) {
			return true
		}
	}
	for y, ranges := range s {
		if y > 0 {
			if above, ok := o[y-1]; ok && ranges.Overlaps(above) {
				return true
			}
		}
		if y < MaxDimension {
			if below, ok := o[y+1]; ok && ranges.Overlaps(below) {
				return true
			}
		}
	}
	return false
}

// Touches reports whether s and o are connected or overlap.
func (s Segment) Touches(o Segment) bool {
	return s.Connected(o) || s.Overlaps(o)
}
