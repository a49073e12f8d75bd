package render

import (
	"fmt"

	"github.com/buffos/go-reflections/internal/geometry"
)

// Explanation is the paragraph shown under the chart for the selected
// reflection. The line kinds mention the current k or h.
func Explanation(r geometry.Reflection) string {
	switch r.Kind {
	case geometry.XAxis:
		return "Reflecting a point (x, y) across the x-axis keeps x and changes the sign of y. " +
			"The rule is " + r.Kind.Formula() + ". Think of the x-axis as a mirror: the image sits " +
			"at the same distance from the axis, on the opposite side."
	case geometry.YAxis:
		return "Reflecting a point (x, y) across the y-axis keeps y and changes the sign of x. " +
			"The rule is " + r.Kind.Formula() + ". The y-axis acts as the mirror: the image sits " +
			"at the same distance from the axis, on the other side."
	case geometry.Origin:
		return "Reflecting a point (x, y) through the origin (0, 0) changes the sign of both coordinates. " +
			"The rule is " + r.Kind.Formula() + ". It is the same as reflecting across the x-axis " +
			"and then across the y-axis, in either order."
	case geometry.LineYEqualsX:
		return "Reflecting a point (x, y) across the line y = x swaps the two coordinates. " +
			"The rule is " + r.Kind.Formula() + ". The dotted green line on the chart is y = x, " +
			"the mirror of this reflection."
	case geometry.LineYEqualsNegX:
		return "Reflecting a point (x, y) across the line y = -x swaps the coordinates and changes both signs. " +
			"The rule is " + r.Kind.Formula() + ". The dotted green line on the chart is y = -x, " +
			"the mirror of this reflection."
	case geometry.Horizontal:
		return fmt.Sprintf("Reflecting a point (x, y) across a horizontal line y = k keeps x, and the new y is 2k - y. "+
			"The rule is %s. Here the mirror is %s, so every image sits at the same vertical "+
			"distance from that line as its original.", r.Kind.Formula(), r.Equation())
	case geometry.Vertical:
		return fmt.Sprintf("Reflecting a point (x, y) across a vertical line x = h keeps y, and the new x is 2h - x. "+
			"The rule is %s. Here the mirror is %s, so every image sits at the same horizontal "+
			"distance from that line as its original.", r.Kind.Formula(), r.Equation())
	}
	return "Pick a reflection from the menu to see how it moves the points."
}

// TheoryExample is one worked example on the theory page.
type TheoryExample struct {
	Kind       geometry.Kind
	Title      string
	Summary    string
	Formula    string
	Reflection geometry.Reflection
	Input      geometry.Point
	Output     geometry.Point
	Working    string
}

// theorySample is the point every worked example starts from.
var theorySample = geometry.Point{X: 2, Y: 3}

// theoryLine is the k or h used by the line examples.
const theoryLine = 5.0

var theorySummaries = map[geometry.Kind]string{
	geometry.XAxis:           "x stays the same and y changes sign.",
	geometry.YAxis:           "y stays the same and x changes sign.",
	geometry.Origin:          "Both coordinates change sign.",
	geometry.LineYEqualsX:    "The coordinates swap places.",
	geometry.LineYEqualsNegX: "The coordinates swap places and both change sign.",
	geometry.Horizontal:      "x stays the same; the new y is twice k minus the old y.",
	geometry.Vertical:        "y stays the same; the new x is twice h minus the old x.",
}

// Theory returns one worked example per kind, computed with the same
// engine the chart uses.
func Theory() []TheoryExample {
	var out []TheoryExample
	for i, k := range geometry.AllKinds() {
		r := geometry.Reflection{Kind: k}
		if k.NeedsParam() {
			r.Param = theoryLine
		}
		res := geometry.Reflect(theorySample, r)
		ex := TheoryExample{
			Kind:       k,
			Title:      fmt.Sprintf("%d. %s", i+1, k.Label()),
			Summary:    theorySummaries[k],
			Formula:    k.Formula(),
			Reflection: r,
			Input:      theorySample,
			Output:     res,
		}
		switch k {
		case geometry.Horizontal:
			ex.Working = fmt.Sprintf("With the mirror %s (k = %s): (%s, 2·%s - %s) = %s.",
				r.Equation(), geometry.FormatNumber(r.Param),
				geometry.FormatNumber(theorySample.X), geometry.FormatNumber(r.Param),
				geometry.FormatNumber(theorySample.Y), res)
		case geometry.Vertical:
			ex.Working = fmt.Sprintf("With the mirror %s (h = %s): (2·%s - %s, %s) = %s.",
				r.Equation(), geometry.FormatNumber(r.Param),
				geometry.FormatNumber(r.Param), geometry.FormatNumber(theorySample.X),
				geometry.FormatNumber(theorySample.Y), res)
		default:
			ex.Working = fmt.Sprintf("The point %s becomes %s.", theorySample, res)
		}
		out = append(out, ex)
	}
	return out
}
