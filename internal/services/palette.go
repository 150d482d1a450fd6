package services

// The fixed route palette. Route i is painted palette[i mod 5], so
// colors repeat once routes outnumber the palette.
var palette = []string{
	"#e74c3c", // red
	"#3498db", // blue
	"#2ecc71", // green
	"#f39c12", // orange
	"#9b59b6", // purple
}

// RouteColor is a pure function of the route index.
func RouteColor(i int) string {
	n := len(palette)
	return palette[((i%n)+n)%n]
}
