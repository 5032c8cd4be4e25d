package core

// PowerHeuristic implements the power heuristic (β=2) for multiple
// importance sampling, combining a density fPdf from one sampling
// strategy against a competing density gPdf. w(a,b) + w(b,a) = 1 for
// any (a,b) > 0.
func PowerHeuristic(fPdf, gPdf float64) float64 {
	if fPdf == 0 {
		return 0
	}
	f := fPdf * fPdf
	g := gPdf * gPdf
	return f / (f + g)
}

// BalanceHeuristic implements the balance-heuristic MIS weight
// fPdf/(fPdf+gPdf), provided alongside PowerHeuristic as the simpler
// combination rule. Like the power heuristic, w(a,b) + w(b,a) = 1 for
// any (a,b) > 0.
func BalanceHeuristic(fPdf, gPdf float64) float64 {
	if fPdf == 0 {
		return 0
	}
	return fPdf / (fPdf + gPdf)
}
