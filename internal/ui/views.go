package ui

import "strings"

// View identifies one of the three screens.
type View int

const (
	ViewFields View = iota
	ViewSensors
	ViewIrrigation
)

var viewOrder = []View{ViewFields, ViewSensors, ViewIrrigation}

// Route returns the navigation name of v.
func (v View) Route() string {
	switch v {
	case ViewSensors:
		return "sensors"
	case ViewIrrigation:
		return "irrigation"
	default:
		return "fields"
	}
}

// Title returns the display title of v.
func (v View) Title() string {
	switch v {
	case ViewSensors:
		return "Sensors"
	case ViewIrrigation:
		return "Irrigation"
	default:
		return "Fields"
	}
}

// ParseView maps a route name to a View. Empty and unknown names resolve to
// the root view.
func ParseView(route string) View {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(route), "/")) {
	case "sensors":
		return ViewSensors
	case "irrigation":
		return ViewIrrigation
	default:
		return ViewFields
	}
}

func (v View) next() View {
	return viewOrder[(int(v)+1)%len(viewOrder)]
}

func (v View) prev() View {
	return viewOrder[(int(v)+len(viewOrder)-1)%len(viewOrder)]
}
