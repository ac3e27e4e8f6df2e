package diamond

// Canonical grading scales, worst to best. Ranks are used for display grouping only.
var (
	CutRank = map[string]int{
		"Fair": 0, "Good": 1, "Very Good": 2, "Premium": 3, "Ideal": 4,
	}
	ColorRank = map[string]int{
		"D": 0, "E": 1, "F": 2, "G": 3, "H": 4, "I": 5, "J": 6,
	}
	ClarityRank = map[string]int{
		"I1": 0, "SI2": 1, "SI1": 2, "VS2": 3, "VS1": 4, "VVS2": 5, "VVS1": 6, "IF": 7,
	}
)

// RankTable returns the rank lookup for a categorical field, or nil.
func RankTable(f Field) map[string]int {
	switch f {
	case Cut:
		return CutRank
	case Color:
		return ColorRank
	case Clarity:
		return ClarityRank
	}
	return nil
}

// Rank returns the position of value on the scale for f. Unknown values
// report ok=false.
func Rank(f Field, value string) (int, bool) {
	rt := RankTable(f)
	if rt == nil {
		return 0, false
	}
	r, ok := rt[value]
	return r, ok
}
