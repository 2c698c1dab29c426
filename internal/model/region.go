package model

// World is the global aggregate row of the dataset.
const World = "World"

// Regions is the fixed set of continent-level pseudo-countries. Rows with these
// names are aggregates, never sovereign nations.
var Regions = []string{
	World,
	"Asia",
	"Oceania",
	"Europe",
	"Africa",
	"North America",
	"South America",
	"Antarctica",
}

var regionSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Regions))
	for _, r := range Regions {
		m[r] = struct{}{}
	}
	return m
}()

// IsRegion reports whether name is a regional aggregate (exact match).
func IsRegion(name string) bool {
	_, ok := regionSet[name]
	return ok
}

// IsContinent reports whether name is a region other than World.
func IsContinent(name string) bool {
	return name != World && IsRegion(name)
}
