package telemetry

// TickRecord is one CSV row summarizing a single simulation tick, written
// by Recorder.Write. Field order and names follow the csv tag convention.
type TickRecord struct {
	Tick              int32   `csv:"tick"`
	Population        int32   `csv:"population"`
	ParticleCount     int32   `csv:"particles"`
	OffspringBorn     int32   `csv:"offspring_born"`
	CreaturesCulled   int32   `csv:"creatures_culled"`
	FailedPlacements  int32   `csv:"failed_placements"`
	GlobalEnergyGains float64 `csv:"global_energy_gains"`
	GlobalEnergyCosts float64 `csv:"global_energy_costs"`

	MutationsParametric      uint64 `csv:"mut_parametric"`
	MutationsCategorical     uint64 `csv:"mut_categorical"`
	MutationsSpring          uint64 `csv:"mut_spring"`
	MutationsAddPoint        uint64 `csv:"mut_add_point"`
	MutationsDeleteSpring    uint64 `csv:"mut_delete_spring"`
	MutationsAddSpring       uint64 `csv:"mut_add_spring"`
	MutationsSubdivideSpring uint64 `csv:"mut_subdivide_spring"`
	MutationsBodyScale       uint64 `csv:"mut_body_scale"`
}
