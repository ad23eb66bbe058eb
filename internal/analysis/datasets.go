package analysis

import (
	"fmt"
	"maps"
	"math"

	"github.com/soltixdb/datahub/internal/analytics"
	"github.com/soltixdb/datahub/internal/analytics/composite"
	"github.com/soltixdb/datahub/internal/analytics/indicator"
	"github.com/soltixdb/datahub/internal/analytics/stats"
	"github.com/soltixdb/datahub/internal/methodology"
	"github.com/soltixdb/datahub/internal/records"
)

// Level is one group's metric value with its band
type Level struct {
	Group  string  `json:"group"`
	Value  float64 `json:"value"`
	Status string  `json:"status"`
}

func levels(observations []analytics.Observation, bands indicator.Classifier) []Level {
	out := make([]Level, len(observations))
	for i, o := range observations {
		out[i] = Level{Group: o.Group, Value: o.Value, Status: bands.Classify(o.Value)}
	}
	return out
}

func levelStatus(l Level) string { return l.Status }

func requireRows(c *env, observations []analytics.Observation, what string) error {
	if len(observations) == 0 {
		return fmt.Errorf("%w: %s has no %s rows for %d", ErrNoData, c.m.DatasetID, what, c.year)
	}
	return nil
}

func with(dims map[string]string, key, value string) map[string]string {
	out := maps.Clone(dims)
	if out == nil {
		out = make(map[string]string, 1)
	}
	out[key] = value
	return out
}

func schoolParticipation(c *env, res *Result) ([]composite.Input, error) {
	age := map[string]string{records.DimAgeGroup: c.ageGroup}
	level := c.observeYear("aps", with(age, records.DimGender, records.Total))
	if err := requireRows(c, level, "age group "+c.ageGroup); err != nil {
		return nil, err
	}

	parity := indicator.GenderParity(
		c.observeYear("aps", with(age, records.DimGender, records.Male)),
		c.observeYear("aps", with(age, records.DimGender, records.Female)),
		c.m.Bands(methodology.GPI))
	res.Indicators = append(res.Indicators, c.indicator(methodology.GPI, parity,
		statuses(parity, func(p indicator.Parity) string { return p.Status })))

	rates := indicator.GrowthRates(c.series("aps", with(age, records.DimGender, records.Total)),
		c.m.Bands(methodology.GrowthRate))
	current := indicator.ForYear(rates, c.year)
	res.Indicators = append(res.Indicators, c.indicator(methodology.GrowthRate, current,
		statuses(current, func(g indicator.GrowthRate) string { return g.Status })))

	distance := make(map[string]float64, len(parity))
	for _, p := range parity {
		distance[p.Group] = math.Abs(p.GPI - 1)
	}
	return join(byGroup(level), indicator.MeanRates(rates), distance), nil
}

func schooling(c *env, res *Result) ([]composite.Input, error) {
	total := map[string]string{records.DimGender: records.Total}
	rls := c.observeYear("rls", total)
	hls := c.observeYear("hls", total)
	if err := requireRows(c, rls, "total"); err != nil {
		return nil, err
	}

	gaps := indicator.EducationGaps(rls, hls, c.m.Bands(methodology.EducationGap))
	res.Indicators = append(res.Indicators, c.indicator(methodology.EducationGap, gaps,
		statuses(gaps, func(g indicator.EducationGap) string { return g.Status })))

	genderGaps := indicator.Gaps(
		c.observeYear("rls", map[string]string{records.DimGender: records.Male}),
		c.observeYear("rls", map[string]string{records.DimGender: records.Female}),
		c.m.Bands(methodology.GenderGap))
	res.Indicators = append(res.Indicators, c.indicator(methodology.GenderGap, genderGaps,
		statuses(genderGaps, func(g indicator.Gap) string { return g.Status })))

	res.Indicators = append(res.Indicators, c.convergence(methodology.ConvergenceRate, "rls", total))

	absGap := make(map[string]float64, len(genderGaps))
	for _, g := range genderGaps {
		absGap[g.Group] = math.Abs(g.Gap)
	}
	return join(byGroup(rls), byGroup(hls), absGap), nil
}

// convergence runs the beta-convergence regression of a metric. With too
// few provinces the indicator carries no results.
func (c *env) convergence(id, metric string, dims map[string]string) Indicator {
	conv, ok := indicator.Convergence(c.series(metric, dims), convergenceMinGroups, c.m.Bands(id))
	if !ok {
		return c.indicator(id, nil, nil)
	}
	return c.indicator(id, conv, []string{conv.Status})
}

// idealLongevityGap is the female-male life expectancy gap scored 100
const idealLongevityGap = 4.0

// GenderBalance scores a female-male longevity gap on 0-100, peaking at the
// ideal four-year gap
func GenderBalance(gap float64) float64 {
	return stats.Clamp((1-math.Abs(gap-idealLongevityGap)/idealLongevityGap)*100, 0, 100)
}

func lifeExpectancy(c *env, res *Result) ([]composite.Input, error) {
	level := c.observeYear("ahh_total", nil)
	if err := requireRows(c, level, "life expectancy"); err != nil {
		return nil, err
	}

	a, _ := c.m.Analysis(methodology.LifeExpectancyTrend)
	trends := indicator.Trends(c.series("ahh_total", nil), indicator.TrendConfig{
		Bands:  c.m.Bands(methodology.LifeExpectancyTrend),
		Target: a.Target,
	})
	res.Indicators = append(res.Indicators, c.indicator(methodology.LifeExpectancyTrend, trends,
		statuses(trends, func(t indicator.Trend) string { return t.Status })))

	gaps := indicator.Gaps(c.observeYear("ahh_perempuan", nil), c.observeYear("ahh_lakilaki", nil),
		c.m.Bands(methodology.GenderLongevityGap))
	res.Indicators = append(res.Indicators, c.indicator(methodology.GenderLongevityGap, gaps,
		statuses(gaps, func(g indicator.Gap) string { return g.Status })))

	disparity := indicator.RegionalDisparity(c.observe("ahh_total", nil), c.m.Bands(methodology.RegionalDisparity))
	res.Indicators = append(res.Indicators, c.indicator(methodology.RegionalDisparity, disparity,
		statuses(disparity, func(d indicator.Disparity) string { return d.Status })))

	slope := make(map[string]float64, len(trends))
	for _, t := range trends {
		slope[t.Group] = t.Slope
	}
	balance := make(map[string]float64, len(gaps))
	for _, g := range gaps {
		balance[g.Group] = GenderBalance(g.Gap)
	}
	return join(byGroup(level), slope, balance), nil
}

func nutrition(c *env, res *Result) ([]composite.Input, error) {
	stunting := c.observeYear("stunting", nil)
	if err := requireRows(c, stunting, "stunting"); err != nil {
		return nil, err
	}
	wasting := c.observeYear("wasting", nil)
	underweight := c.observeYear("underweight", nil)

	prevalence := levels(stunting, c.m.Bands(methodology.StuntingPrevalence))
	res.Indicators = append(res.Indicators, c.indicator(methodology.StuntingPrevalence, prevalence,
		statuses(prevalence, levelStatus)))

	reductions := indicator.ReductionRates(c.series("stunting", nil), c.m.Bands(methodology.ReductionRate))
	current := indicator.ForYear(reductions, c.year)
	res.Indicators = append(res.Indicators, c.indicator(methodology.ReductionRate, current,
		statuses(current, func(r indicator.Reduction) string { return r.Status })))

	w, u := byGroup(wasting), byGroup(underweight)
	inputs := make([]indicator.SeverityInput, 0, len(stunting))
	for _, s := range stunting {
		wv, okW := w[s.Group]
		uv, okU := u[s.Group]
		if okW && okU {
			inputs = append(inputs, indicator.SeverityInput{Group: s.Group, Values: []float64{s.Value, wv, uv}})
		}
	}
	a, _ := c.m.Analysis(methodology.NutritionSeverity)
	severity := indicator.Severity(inputs, a.Weights, c.m.Bands(methodology.NutritionSeverity))
	res.Indicators = append(res.Indicators, c.indicator(methodology.NutritionSeverity, severity,
		statuses(severity, func(s indicator.SeverityScore) string { return s.Status })))

	return join(byGroup(stunting), indicator.MeanReductions(reductions), w), nil
}

func grdp(c *env, res *Result) ([]composite.Input, error) {
	growth := c.observeYear("pertumbuhan_ekonomi", nil)
	if err := requireRows(c, growth, "growth"); err != nil {
		return nil, err
	}

	classified := levels(growth, c.m.Bands(methodology.EconomicGrowth))
	res.Indicators = append(res.Indicators, c.indicator(methodology.EconomicGrowth, classified,
		statuses(classified, levelStatus)))

	var sectors []indicator.SectorValue
	for _, s := range c.bundle.GRDPSectors {
		if s.Year == c.year {
			sectors = append(sectors, indicator.SectorValue{Group: s.ProvinceName, Sector: s.Sector, Value: s.Value})
		}
	}
	concentration := indicator.Diversification(sectors, c.m.Bands(methodology.SectoralDiversity))
	res.Indicators = append(res.Indicators, c.indicator(methodology.SectoralDiversity, concentration,
		statuses(concentration, func(x indicator.Concentration) string { return x.Status })))

	res.Indicators = append(res.Indicators, c.convergence(methodology.EconomicConvergence, "per_kapita_adhb", nil))

	hhi := make(map[string]float64, len(concentration))
	for _, x := range concentration {
		hhi[x.Group] = x.HHI
	}
	return join(byGroup(c.observeYear("per_kapita_adhb", nil)), byGroup(growth), hhi), nil
}

func poverty(c *env, res *Result) ([]composite.Input, error) {
	total := map[string]string{records.DimArea: records.Total}
	rate := c.observeYear("persentase_miskin", total)
	if err := requireRows(c, rate, "total"); err != nil {
		return nil, err
	}

	classified := levels(rate, c.m.Bands(methodology.PovertyRate))
	res.Indicators = append(res.Indicators, c.indicator(methodology.PovertyRate, classified,
		statuses(classified, levelStatus)))

	reductions := indicator.ReductionRates(c.series("persentase_miskin", total), c.m.Bands(methodology.PovertyReduction))
	current := indicator.ForYear(reductions, c.year)
	res.Indicators = append(res.Indicators, c.indicator(methodology.PovertyReduction, current,
		statuses(current, func(r indicator.Reduction) string { return r.Status })))

	gaps := indicator.PovertyGaps(
		c.observeYear("persentase_miskin", map[string]string{records.DimArea: records.Urban}),
		c.observeYear("persentase_miskin", map[string]string{records.DimArea: records.Rural}),
		c.m.Bands(methodology.UrbanRuralGap))
	res.Indicators = append(res.Indicators, c.indicator(methodology.UrbanRuralGap, gaps,
		statuses(gaps, func(g indicator.PovertyGap) string { return g.Status })))

	gap := make(map[string]float64, len(gaps))
	for _, g := range gaps {
		gap[g.Group] = g.Gap
	}
	return join(byGroup(rate), indicator.MeanReductions(reductions), gap), nil
}

// Education levels compared by the mismatch ratio
var (
	higherEducation = []string{"SMA", "Diploma", "Sarjana"}
	basicEducation  = []string{"SD", "SMP"}
)

func unemployment(c *env, res *Result) ([]composite.Input, error) {
	rate := c.observeYear("tpt", nil)
	if err := requireRows(c, rate, "total"); err != nil {
		return nil, err
	}

	classified := levels(rate, c.m.Bands(methodology.UnemploymentRate))
	res.Indicators = append(res.Indicators, c.indicator(methodology.UnemploymentRate, classified,
		statuses(classified, levelStatus)))

	byLevel := func(names []string) map[string][]float64 {
		out := make(map[string][]float64)
		for _, edu := range names {
			for _, o := range c.observeYear("tpt", map[string]string{records.DimEducation: edu}) {
				out[o.Group] = append(out[o.Group], o.Value)
			}
		}
		return out
	}
	high, low := byLevel(higherEducation), byLevel(basicEducation)
	inputs := make([]indicator.MismatchInput, 0, len(rate))
	for _, o := range rate {
		inputs = append(inputs, indicator.MismatchInput{Group: o.Group, High: high[o.Group], Low: low[o.Group]})
	}
	mismatch := indicator.EducationMismatch(inputs, c.m.Bands(methodology.EducationMismatch))
	res.Indicators = append(res.Indicators, c.indicator(methodology.EducationMismatch, mismatch,
		statuses(mismatch, func(m indicator.Mismatch) string { return m.Status })))

	youth := indicator.YouthUnemployment(rate,
		c.observeYear("tpt", map[string]string{records.DimAgeGroup: records.Youth}),
		c.m.Bands(methodology.YouthUnemploymentRatio))
	res.Indicators = append(res.Indicators, c.indicator(methodology.YouthUnemploymentRatio, youth,
		statuses(youth, func(y indicator.YouthRatio) string { return y.Status })))

	ratio := make(map[string]float64, len(mismatch))
	for _, m := range mismatch {
		ratio[m.Group] = m.Ratio
	}
	youthRatio := make(map[string]float64, len(youth))
	for _, y := range youth {
		youthRatio[y.Group] = y.Ratio
	}
	return join(byGroup(rate), ratio, youthRatio), nil
}
