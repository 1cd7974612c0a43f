package paint

// AllCheckers returns every builtin paint rule, in a stable order: ratio
// checks first, then structure, then totals.
func AllCheckers() []*Checker {
	return []*Checker{
		wpvBandChecker(),
		declaredWPVChecker(),
		stageCountChecker(),
		requiredIngredientsChecker(),
		unexpectedIngredientsChecker(),
		duplicateCodesChecker(),
		batchVolumeChecker(),
		quantitySumChecker(),
		densityResolutionChecker(),
	}
}
