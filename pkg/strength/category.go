package strength

const (
	CategoryLength     = "length"
	CategoryLowercase  = "lowercase"
	CategoryUppercase  = "uppercase"
	CategoryDigits     = "digits"
	CategorySymbols    = "symbols"
	CategoryCommon     = "common"
	CategoryDictionary = "dictionary"
	CategoryAge        = "age"
)

// Category is a named scoring dimension with a fixed weight.
type Category struct {
	Name   string `json:"name" yaml:"name"`
	Weight int    `json:"weight" yaml:"weight"`
}

// compositionCategories are the only weights credited to passwords that
// fail the composition check.
var compositionCategories = []string{
	CategoryLength,
	CategoryLowercase,
	CategoryUppercase,
	CategoryDigits,
	CategorySymbols,
}

// DefaultCategories returns the built-in scoring categories.
func DefaultCategories() []Category {
	return []Category{
		{Name: CategoryLength, Weight: 4},
		{Name: CategoryLowercase, Weight: 2},
		{Name: CategoryUppercase, Weight: 3},
		{Name: CategoryDigits, Weight: 3},
		{Name: CategorySymbols, Weight: 4},
		{Name: CategoryCommon, Weight: -4},
		{Name: CategoryDictionary, Weight: -2},
		{Name: CategoryAge, Weight: -2},
	}
}

// TotalWeight sums the weights of all categories.
func TotalWeight(cats []Category) int {
	total := 0
	for _, c := range cats {
		total += c.Weight
	}
	return total
}

func sumOf(cats []Category, names ...string) int {
	total := 0
	for _, c := range cats {
		for _, n := range names {
			if c.Name == n {
				total += c.Weight
				break
			}
		}
	}
	return total
}

func weightOf(cats []Category, name string) int {
	return sumOf(cats, name)
}
