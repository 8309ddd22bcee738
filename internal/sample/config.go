package sample

import (
	"edna/internal/bounds"
	"edna/internal/settings"
)

// The demo genomes read their bounds and mutation rates from a Critter
// configuration with a Vision subconfig, so evolution behavior is tunable
// without recompiling. Scalar bounds are shared by pointer: reloading the
// configuration changes mutation and clamping of already registered types,
// while mutation rates are validated and fixed when Register builds them.
var (
	critterConfig = settings.NewFile("Critter")
	visionConfig  = settings.NewFile("Vision")

	weightBounds = settings.DeclareBounds(critterConfig, "weightBounds", bounds.New(-4.0, 0, 0, 4))
	legsBounds   = settings.DeclareBounds(critterConfig, "legsBounds", bounds.New(1, 2, 3, 4))
	critterRates = settings.DeclareRates(critterConfig, "mutationRates", map[string]float64{
		"weight": 1,
		"legs":   2,
		"diet":   1,
		"span":   4,
		"tag":    1,
		"vision": 2,
	})

	acuityBounds = settings.DeclareBounds(visionConfig, "acuityBounds", bounds.New(0.0, 0.25, 0.75, 1.0))
	rangeBounds  = settings.DeclareBounds(visionConfig, "rangeBounds", bounds.New(0.0, 10.0, 50.0, 100.0))
	visionRates  = settings.DeclareRates(visionConfig, "mutationRates", map[string]float64{
		"acuity": 1,
		"range":  1,
	})
)

func init() {
	settings.Subconfig(critterConfig, visionConfig)
}

// Config exposes the critter configuration file. Printing or writing it
// covers the vision subconfig as well.
func Config() *settings.File {
	return critterConfig
}
