package authstub

import (
	"fmt"

	"github.com/fatih/color"
)

var methodColours = map[string]*color.Color{
	"GET":     color.New(color.FgGreen),
	"POST":    color.New(color.FgYellow),
	"PUT":     color.New(color.FgBlue),
	"PATCH":   color.New(color.FgCyan),
	"DELETE":  color.New(color.FgRed),
	"OPTIONS": color.New(color.FgMagenta),
}

var defaultColour = color.New(color.FgHiBlack)

func formatRoute(method, path string) string {
	c, ok := methodColours[method]
	if !ok {
		c = defaultColour
	}
	return fmt.Sprintf("[%s] %s", c.Sprintf(" %-7s", method), path)
}
