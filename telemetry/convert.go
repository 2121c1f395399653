package telemetry

import "github.com/fluidlife/biosim/world"

// FromTickStats flattens a world.TickStats into a CSV-tagged TickRecord.
func FromTickStats(s world.TickStats) TickRecord {
	return TickRecord{
		Tick:              int32(s.Tick),
		Population:        int32(s.Population),
		ParticleCount:     int32(s.ParticleCount),
		OffspringBorn:     int32(s.OffspringBorn),
		CreaturesCulled:   int32(s.CreaturesCulled),
		FailedPlacements:  int32(s.FailedPlacements),
		GlobalEnergyGains: float64(s.GlobalEnergyGains),
		GlobalEnergyCosts: float64(s.GlobalEnergyCosts),

		MutationsParametric:      s.Mutations.Parametric,
		MutationsCategorical:     s.Mutations.Categorical,
		MutationsSpring:          s.Mutations.Spring,
		MutationsAddPoint:        s.Mutations.AddPoint,
		MutationsDeleteSpring:    s.Mutations.DeleteSpring,
		MutationsAddSpring:       s.Mutations.AddSpring,
		MutationsSubdivideSpring: s.Mutations.SubdivideSpring,
		MutationsBodyScale:       s.Mutations.BodyScale,
	}
}
