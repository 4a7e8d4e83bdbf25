package gesture

// Reduce folds every active gesture's modulator targeting param into its
// three per-class components, per the spec §4.4 composition rules:
// Solo/Family contribute their single active curve value; Overlay
// contributions sum; Ambient contributions multiply as a tonal bias.
// ReduceScalar combines them as base*(1+overlaySum)*ambientProduct;
// ReduceAdditive (for signed biases like orientation) adds the Solo/Family
// value then the overlay sum.
func Reduce(active []ActiveGesture, param string) (soloOrFamily float64, overlaySum float64, ambientProduct float64) {
	ambientProduct = 1
	for _, g := range active {
		for _, m := range g.Modulators {
			if m.Target != param {
				continue
			}
			v := m.Curve.Eval(g.NormalizedTime)
			switch g.Exclusivity.Kind {
			case Solo, FamilyExclusive:
				soloOrFamily = v
			case Overlay:
				overlaySum += v
			case Ambient:
				ambientProduct *= v
			}
		}
	}
	return soloOrFamily, overlaySum, ambientProduct
}

// ReduceScalar applies the scalar combination rule: base*(1+overlaySum)*ambientProduct.
func ReduceScalar(base float64, active []ActiveGesture, param string) float64 {
	_, overlaySum, ambientProduct := Reduce(active, param)
	return base * (1 + overlaySum) * ambientProduct
}

// ReduceAdditive applies the signed-bias combination rule: base + solo/family + overlaySum.
func ReduceAdditive(base float64, active []ActiveGesture, param string) float64 {
	soloOrFamily, overlaySum, _ := Reduce(active, param)
	return base + soloOrFamily + overlaySum
}
