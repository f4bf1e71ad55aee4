package plot

import "strings"

// QuickFunction is a named formula offered as a one-tap preset.
type QuickFunction struct {
	Name    string
	Formula string
}

var QuickFunctions = []QuickFunction{
	{Name: "Linear", Formula: "x"},
	{Name: "Quadratic", Formula: "x^2"},
	{Name: "Cubic", Formula: "x^3"},
	{Name: "Sine", Formula: "sin(x)"},
	{Name: "Cosine", Formula: "cos(x)"},
	{Name: "Tangent", Formula: "tan(x)"},
	{Name: "Logarithmic", Formula: "ln(x)"},
	{Name: "Square Root", Formula: "sqrt(x)"},
	{Name: "Exponential", Formula: "x^x"},
}

// Quick looks a preset up by name, ignoring case and spaces.
func Quick(name string) (QuickFunction, bool) {
	key := normalizeName(name)
	for _, q := range QuickFunctions {
		if normalizeName(q.Name) == key {
			return q, true
		}
	}
	return QuickFunction{}, false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// Defaults is the list a first session starts with.
func Defaults() []Plot {
	return []Plot{
		{Formula: "x^2", Color: Red, Visible: true, Valid: true},
		{Formula: "x^3", Color: Blue, Visible: true, Valid: true},
		{Formula: "x^4", Color: Green, Visible: true, Valid: true},
	}
}
