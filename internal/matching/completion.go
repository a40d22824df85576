package matching

import "strings"

// Completion returns the percentage of profile fields that are filled in.
// Interests count as one field once at least one is present.
func Completion(p *Profile, interestCount int) int {
	if p == nil {
		return 0
	}
	filled := []bool{
		p.Age > 0,
		nonBlank(p.Gender),
		nonBlank(p.Orientation),
		nonBlank(p.Location),
		p.HasCoordinates(),
		nonBlank(p.Bio),
		nonBlank(p.Profession),
		nonBlank(p.Education),
		interestCount > 0,
	}
	n := 0
	for _, ok := range filled {
		if ok {
			n++
		}
	}
	return n * 100 / len(filled)
}

func nonBlank(s string) bool { return strings.TrimSpace(s) != "" }
