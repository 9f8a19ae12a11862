package clinic

import (
	"slices"
	"strings"
)

// FilterPatients keeps patients whose first name, last name or email
// contains term (case-insensitive) or whose phone contains term verbatim.
// Order is preserved; a blank term keeps everyone.
func FilterPatients(patients []Patient, term string) []Patient {
	term = strings.TrimSpace(term)
	if term == "" {
		return patients
	}
	lower := strings.ToLower(term)

	out := make([]Patient, 0, len(patients))
	for _, p := range patients {
		switch {
		case strings.Contains(strings.ToLower(p.FirstName), lower),
			strings.Contains(strings.ToLower(p.LastName), lower),
			strings.Contains(p.Phone, term),
			p.Email != nil && strings.Contains(strings.ToLower(*p.Email), lower):
			out = append(out, p)
		}
	}
	return out
}

// PatientOrder names a patient listing order.
type PatientOrder string

const (
	OrderByName   PatientOrder = "name"   // first name, then last name
	OrderByRecent PatientOrder = "recent" // newest registration first
)

// ParsePatientOrder reads a sort parameter. Blank means OrderByName.
func ParsePatientOrder(s string) (PatientOrder, error) {
	switch o := PatientOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "", OrderByName:
		return OrderByName, nil
	case OrderByRecent:
		return o, nil
	}
	return "", &ValidationError{Fields: map[string]string{"sort": "must be name or recent"}}
}

// SortPatients returns patients in the given order. Listings from the
// repository are already by name, so OrderByName keeps the input as is.
func SortPatients(patients []Patient, order PatientOrder) []Patient {
	if order != OrderByRecent {
		return patients
	}
	out := slices.Clone(patients)
	slices.SortStableFunc(out, func(a, b Patient) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
