package methodology

import (
	"github.com/soltixdb/datahub/internal/analytics/composite"
	"github.com/soltixdb/datahub/internal/analytics/indicator"
	"github.com/soltixdb/datahub/internal/catalog"
)

// Analysis ids shared by the dataset analyses
const (
	GPI                    = "gpi"
	GrowthRate             = "growth_rate"
	CompositePerformance   = "composite_performance"
	EducationGap           = "education_gap"
	GenderGap              = "gender_gap"
	ConvergenceRate        = "convergence_rate"
	LifeExpectancyTrend    = "life_expectancy_trend"
	GenderLongevityGap     = "gender_longevity_gap"
	RegionalDisparity      = "regional_disparity"
	StuntingPrevalence     = "stunting_prevalence"
	ReductionRate          = "reduction_rate"
	NutritionSeverity      = "nutrition_severity"
	EconomicGrowth         = "economic_growth"
	SectoralDiversity      = "sectoral_diversification"
	EconomicConvergence    = "convergence"
	PovertyRate            = "poverty_rate"
	PovertyReduction       = "poverty_reduction"
	UrbanRuralGap          = "urban_rural_gap"
	UnemploymentRate       = "unemployment_rate"
	EducationMismatch      = "education_mismatch"
	YouthUnemploymentRatio = "youth_unemployment"
)

// descending builds a ladder where each band includes its lower bound
func descending(floor string, bands ...indicator.Band) indicator.Ladder {
	return indicator.Ladder{Bands: bands, Floor: floor}
}

func atLeast(label string, min float64) indicator.Band {
	return indicator.Band{Label: label, Min: min, Inclusive: true}
}

func above(label string, min float64) indicator.Band {
	return indicator.Band{Label: label, Min: min}
}

// betaBands classify a convergence coefficient
var betaBands = descending("strong_convergence",
	above("divergence", 0),
	atLeast("weak_convergence", -0.02),
)

var registry = map[string]Methodology{
	catalog.SchoolParticipationID: {
		DatasetID:   catalog.SchoolParticipationID,
		DatasetName: "Angka Partisipasi Sekolah (APS)",
		Analyses: []Analysis{
			{
				ID:          GPI,
				Name:        "Gender Parity Index (GPI)",
				Description: "Gender equality of school participation",
				Formula:     "GPI = APS female / APS male",
				Interpretation: Interpretation{
					Good:   "GPI between 0.97 and 1.03: parity achieved (UNESCO standard)",
					Medium: "GPI between 0.90-0.97 or 1.03-1.10: minor disparity",
					Bad:    "GPI below 0.90 or above 1.10: significant disparity",
				},
				Bands: indicator.RangeBands{
					Bands: []indicator.RangeBand{
						{Label: "achieved", Low: 0.97, High: 1.03},
						{Label: "minor_disparity", Low: 0.90, High: 1.10},
					},
					Otherwise: "significant_disparity",
				},
			},
			{
				ID:          GrowthRate,
				Name:        "Year-over-Year Growth Rate",
				Description: "Annual growth of school participation",
				Formula:     "Growth = (APS_t - APS_t-1) / APS_t-1 x 100",
				Unit:        "%",
				Interpretation: Interpretation{
					Good:   "Above 2% per year: significant increase",
					Medium: "0-2%: moderate increase",
					Bad:    "Below 0%: participation declining",
				},
				Bands: descending("negative",
					above("high", 5),
					above("moderate", 2),
					above("low", 0),
				),
			},
			{
				ID:          CompositePerformance,
				Name:        "Provincial Performance Index",
				Description: "Achievement, momentum and equity combined",
				Formula:     "Score = 0.50 x Norm_APS + 0.30 x Norm_Growth + 0.20 x Norm_GPI",
				Interpretation: Interpretation{
					Good:   "High Performer: score of 80 or more",
					Medium: "Medium Performer: score from 65 up to 80",
					Bad:    "Low Performer: score below 65",
				},
			},
		},
		Composite: Composite{
			Name:          "Provincial Performance Index",
			Formula:       "Weighted sum of normalized metrics",
			Normalization: "Min-max to 0-100; GPI as distance from 1, inverted",
			Components: []composite.Component{
				{Name: "aps_level", Weight: 0.50, Direction: composite.Direct},
				{Name: "average_growth", Weight: 0.30, Direction: composite.Direct},
				{Name: "gpi_distance", Weight: 0.20, Direction: composite.Inverse},
			},
		},
		Clustering: Clustering{
			Method:   "Score threshold clustering",
			Criteria: "Score >= 80: High | 65 <= Score < 80: Medium | Score < 65: Low",
			Labels:   composite.Labels{Top: "High Performer", Middle: "Medium Performer", Bottom: "Low Performer"},
			Strategy: composite.FixedThreshold{
				High: 80, Medium: 65,
				Labels: composite.Labels{Top: "High Performer", Middle: "Medium Performer", Bottom: "Low Performer"},
			},
		},
	},

	catalog.SchoolingID: {
		DatasetID:   catalog.SchoolingID,
		DatasetName: "RLS & HLS",
		Analyses: []Analysis{
			{
				ID:          EducationGap,
				Name:        "Education Gap (HLS - RLS)",
				Description: "Distance between expected and attained years of schooling",
				Formula:     "Gap = HLS - RLS",
				Unit:        "years",
				Interpretation: Interpretation{
					Good:   "Gap above 4 years: high room for expansion",
					Medium: "Gap of 2-4 years: moderate room for expansion",
					Bad:    "Gap below 2 years: stagnating education system",
				},
				Bands: descending("stagnation",
					above("high_expansion", 4),
					atLeast("moderate_expansion", 2),
				),
			},
			{
				ID:          GenderGap,
				Name:        "Gender Gap in Education",
				Description: "Schooling disparity between men and women",
				Formula:     "Gender Gap = RLS male - RLS female",
				Unit:        "years",
				Interpretation: Interpretation{
					Good:   "Gap within +/-0.3 years: equal",
					Medium: "Gap of 0.3-0.8 years: minor disparity",
					Bad:    "Gap above 0.8 years: significant disparity",
				},
				Bands: indicator.Absolute{Classifier: descending("equal",
					atLeast("significant_gap", 0.8),
					atLeast("minor_gap", 0.3),
				)},
			},
			{
				ID:          ConvergenceRate,
				Name:        "Educational Convergence Rate",
				Description: "Whether provinces with lower RLS catch up",
				Formula:     "Growth_RLS = alpha + beta x Initial_RLS",
				Interpretation: Interpretation{
					Good:   "Negative beta: lagging provinces catch up faster",
					Medium: "Beta near 0: even growth",
					Bad:    "Positive beta: divergence",
				},
				Bands: betaBands,
			},
		},
		Composite: Composite{
			Name:          "Education Quality Index",
			Formula:       "0.40 x RLS + 0.30 x HLS + 0.30 x gender parity",
			Normalization: "Min-max to 0-100; absolute gender gap inverted",
			Components: []composite.Component{
				{Name: "rls", Weight: 0.40, Direction: composite.Direct},
				{Name: "hls", Weight: 0.30, Direction: composite.Direct},
				{Name: "gender_gap", Weight: 0.30, Direction: composite.Inverse},
			},
		},
		Clustering: Clustering{
			Method:   "Percentile clustering",
			Criteria: "33rd and 67th percentile of the Education Quality Index",
			Labels:   composite.Labels{Top: "Advanced", Middle: "Developing", Bottom: "Lagging"},
			Strategy: composite.Percentile{
				Labels: composite.Labels{Top: "Advanced", Middle: "Developing", Bottom: "Lagging"},
			},
		},
	},

	catalog.LifeExpectancyID: {
		DatasetID:   catalog.LifeExpectancyID,
		DatasetName: "Angka Harapan Hidup (AHH)",
		Analyses: []Analysis{
			{
				ID:          LifeExpectancyTrend,
				Name:        "Life Expectancy Growth Trend",
				Description: "Yearly change of life expectancy",
				Formula:     "Trend = linear regression slope of AHH on year",
				Unit:        "years/year",
				Interpretation: Interpretation{
					Good:   "Trend of 0.3 years/year or more: significant improvement",
					Medium: "Trend of 0.1-0.3 years/year: moderate improvement",
					Bad:    "Trend below 0.1 years/year: stagnation",
				},
				Bands: descending("stagnation",
					atLeast("significant_improvement", 0.3),
					atLeast("moderate_improvement", 0.1),
				),
				Target: 75,
			},
			{
				ID:          GenderLongevityGap,
				Name:        "Gender Longevity Gap",
				Description: "Female minus male life expectancy",
				Formula:     "Gap = AHH female - AHH male",
				Unit:        "years",
				Interpretation: Interpretation{
					Good:   "Gap of 3-5 years is biologically normal",
					Medium: "Gap of 2-3 or 5-6 years: minor deviation",
					Bad:    "Gap below 2 or above 6 years: anomaly",
				},
				Bands: indicator.RangeBands{
					Bands: []indicator.RangeBand{
						{Label: "normal", Low: 3, High: 5},
						{Label: "minor_deviation", Low: 2, High: 6},
					},
					Otherwise: "anomaly",
				},
			},
			{
				ID:          RegionalDisparity,
				Name:        "Regional Health Disparity Index",
				Description: "Spread of life expectancy across provinces",
				Formula:     "CV = StdDev / Mean x 100",
				Unit:        "%",
				Interpretation: Interpretation{
					Good:   "CV below 5%: low disparity",
					Medium: "CV from 5% up to 10%: moderate disparity",
					Bad:    "CV of 10% or more: high disparity",
				},
				Bands: descending("low_disparity",
					atLeast("high_disparity", 10),
					atLeast("moderate_disparity", 5),
				),
			},
		},
		Composite: Composite{
			Name:          "Health Development Index",
			Formula:       "0.50 x AHH level + 0.30 x trend + 0.20 x gender balance",
			Normalization: "Min-max to 0-100; gender balance (1-|gap-4|/4) x 100 clamped",
			Components: []composite.Component{
				{Name: "ahh_level", Weight: 0.50, Direction: composite.Direct},
				{Name: "trend", Weight: 0.30, Direction: composite.Direct},
				{Name: "gender_balance", Weight: 0.20, Direction: composite.Scaled},
			},
		},
		Clustering: Clustering{
			Method:   "Score threshold clustering",
			Criteria: "Score >= 67: High | 33 <= Score < 67: Medium | Score < 33: Low",
			Labels:   composite.Labels{Top: "High Health", Middle: "Medium Health", Bottom: "Low Health"},
			Strategy: composite.FixedThreshold{
				High: 67, Medium: 33,
				Labels: composite.Labels{Top: "High Health", Middle: "Medium Health", Bottom: "Low Health"},
			},
		},
	},

	catalog.NutritionID: {
		DatasetID:   catalog.NutritionID,
		DatasetName: "Stunting & Gizi Buruk",
		Analyses: []Analysis{
			{
				ID:          StuntingPrevalence,
				Name:        "Stunting Prevalence Rate",
				Description: "Share of children under five that are stunted (height-for-age)",
				Formula:     "Prevalence = stunted children / all children x 100",
				Unit:        "%",
				Interpretation: Interpretation{
					Good:   "Below 20%",
					Medium: "20-30%",
					Bad:    "Above 30%: public health problem",
				},
				Bands: descending("low",
					above("high", 30),
					atLeast("medium", 20),
				),
			},
			{
				ID:          ReductionRate,
				Name:        "Annual Reduction Rate",
				Description: "Yearly decline of stunting prevalence",
				Formula:     "Reduction = (Prev_t-1 - Prev_t) / Prev_t-1 x 100",
				Unit:        "%",
				Interpretation: Interpretation{
					Good:   "Above 3% per year: on track for SDG 2030",
					Medium: "1-3% per year: moderate progress",
					Bad:    "Below 1% or negative: slow or worsening",
				},
				Bands: descending("deteriorating",
					above("on_track", 3),
					atLeast("moderate_progress", 1),
					above("slow_progress", 0),
				),
			},
			{
				ID:          NutritionSeverity,
				Name:        "Malnutrition Severity Index",
				Description: "Weighted malnutrition burden",
				Formula:     "Severity = 0.4 x stunting + 0.3 x wasting + 0.3 x underweight",
				Unit:        "%",
				Interpretation: Interpretation{
					Good:   "Below 15%: low",
					Medium: "15-25%: medium",
					Bad:    "Above 25%: critical",
				},
				Bands: descending("low",
					above("high", 25),
					atLeast("medium", 15),
				),
				Weights: []float64{0.4, 0.3, 0.3},
			},
		},
		Composite: Composite{
			Name:          "Nutrition Performance Index",
			Formula:       "0.40 x stunting (inverse) + 0.35 x reduction + 0.25 x wasting (inverse)",
			Normalization: "Min-max to 0-100 with prevalence inverted",
			Components: []composite.Component{
				{Name: "stunting", Weight: 0.40, Direction: composite.Inverse},
				{Name: "reduction_rate", Weight: 0.35, Direction: composite.Direct},
				{Name: "wasting", Weight: 0.25, Direction: composite.Inverse},
			},
		},
		Clustering: Clustering{
			Method:   "Percentile clustering",
			Criteria: "Lower burden scores higher",
			Labels:   composite.Labels{Top: "Low Burden", Middle: "Medium Burden", Bottom: "High Burden"},
			Strategy: composite.Percentile{
				Labels: composite.Labels{Top: "Low Burden", Middle: "Medium Burden", Bottom: "High Burden"},
			},
		},
	},

	catalog.GRDPID: {
		DatasetID:   catalog.GRDPID,
		DatasetName: "PDRB per Kapita",
		Analyses: []Analysis{
			{
				ID:          EconomicGrowth,
				Name:        "PDRB Growth Rate",
				Description: "Regional real economic growth",
				Formula:     "Growth = (PDRB_t - PDRB_t-1) / PDRB_t-1 x 100",
				Unit:        "%",
				Interpretation: Interpretation{
					Good:   "Above 6% per year: high growth",
					Medium: "4-6% per year: moderate growth",
					Bad:    "Below 4% per year: low growth",
				},
				Bands: descending("low_growth",
					above("high_growth", 6),
					atLeast("moderate_growth", 4),
				),
			},
			{
				ID:          SectoralDiversity,
				Name:        "Economic Diversification Index",
				Description: "Herfindahl-Hirschman concentration of sector shares",
				Formula:     "HHI = sum(share_i^2)",
				Interpretation: Interpretation{
					Good:   "HHI below 0.15: highly diversified",
					Medium: "HHI of 0.15-0.25: moderately diversified",
					Bad:    "HHI above 0.25: concentrated",
				},
				Bands: descending("highly_diversified",
					above("concentrated", 0.25),
					atLeast("moderately_diversified", 0.15),
				),
			},
			{
				ID:          EconomicConvergence,
				Name:        "Economic Convergence",
				Description: "Whether poorer provinces grow faster",
				Formula:     "Growth = alpha + beta x Initial_PDRB",
				Interpretation: Interpretation{
					Good:   "Beta below -0.02: strong convergence",
					Medium: "Beta between -0.02 and 0: weak convergence",
					Bad:    "Beta above 0: divergence",
				},
				Bands: betaBands,
			},
		},
		Composite: Composite{
			Name:          "Economic Competitiveness Index",
			Formula:       "0.40 x per capita + 0.35 x growth + 0.25 x diversification",
			Normalization: "Min-max to 0-100; HHI inverted",
			Components: []composite.Component{
				{Name: "per_capita", Weight: 0.40, Direction: composite.Direct},
				{Name: "growth", Weight: 0.35, Direction: composite.Direct},
				{Name: "hhi", Weight: 0.25, Direction: composite.Inverse},
			},
		},
		Clustering: Clustering{
			Method:   "Score threshold clustering",
			Criteria: "Score >= 67: Highly | 33 <= Score < 67: Moderately | Score < 33: Less competitive",
			Labels:   composite.Labels{Top: "Highly Competitive", Middle: "Moderately Competitive", Bottom: "Less Competitive"},
			Strategy: composite.FixedThreshold{
				High: 67, Medium: 33,
				Labels: composite.Labels{Top: "Highly Competitive", Middle: "Moderately Competitive", Bottom: "Less Competitive"},
			},
		},
	},

	catalog.PovertyID: {
		DatasetID:   catalog.PovertyID,
		DatasetName: "Tingkat Kemiskinan",
		Analyses: []Analysis{
			{
				ID:          PovertyRate,
				Name:        "Poverty Headcount Ratio",
				Description: "Share of population below the poverty line",
				Formula:     "Poverty = poor / population x 100",
				Unit:        "%",
				Interpretation: Interpretation{
					Good:   "Below 7%: low poverty",
					Medium: "7-12%: medium poverty",
					Bad:    "Above 12%: high poverty",
				},
				Bands: descending("low_poverty",
					above("high_poverty", 12),
					atLeast("medium_poverty", 7),
				),
			},
			{
				ID:          PovertyReduction,
				Name:        "Annual Poverty Reduction Rate",
				Description: "Yearly decline of the poverty rate",
				Formula:     "Reduction = (Poverty_t-1 - Poverty_t) / Poverty_t-1 x 100",
				Unit:        "%",
				Interpretation: Interpretation{
					Good:   "Above 5% per year: on track",
					Medium: "2-5% per year: moderate progress",
					Bad:    "Below 2% or negative: slow or worsening",
				},
				Bands: descending("slow_progress",
					above("on_track", 5),
					atLeast("moderate_progress", 2),
				),
			},
			{
				ID:          UrbanRuralGap,
				Name:        "Urban-Rural Poverty Gap",
				Description: "Rural minus urban poverty rate",
				Formula:     "Gap = Poverty_rural - Poverty_urban",
				Unit:        "percentage points",
				Interpretation: Interpretation{
					Good:   "Gap below 3: low disparity",
					Medium: "Gap of 3-7: moderate disparity",
					Bad:    "Gap above 7: high rural disadvantage",
				},
				Bands: descending("low_disparity",
					atLeast("high_disparity", 7),
					atLeast("moderate_disparity", 3),
				),
			},
		},
		Composite: Composite{
			Name:          "Poverty Alleviation Performance Index",
			Formula:       "0.45 x poverty (inverse) + 0.35 x reduction + 0.20 x urban-rural gap (inverse)",
			Normalization: "Min-max to 0-100 with inversion",
			Components: []composite.Component{
				{Name: "poverty_rate", Weight: 0.45, Direction: composite.Inverse},
				{Name: "reduction_rate", Weight: 0.35, Direction: composite.Direct},
				{Name: "urban_rural_gap", Weight: 0.20, Direction: composite.Inverse},
			},
		},
		Clustering: Clustering{
			Method:   "Percentile clustering",
			Criteria: "Lower poverty scores higher",
			Labels:   composite.Labels{Top: "Low Poverty", Middle: "Medium Poverty", Bottom: "High Poverty"},
			Strategy: composite.Percentile{
				Labels: composite.Labels{Top: "Low Poverty", Middle: "Medium Poverty", Bottom: "High Poverty"},
			},
		},
	},

	catalog.UnemploymentID: {
		DatasetID:   catalog.UnemploymentID,
		DatasetName: "Tingkat Pengangguran Terbuka (TPT)",
		Analyses: []Analysis{
			{
				ID:          UnemploymentRate,
				Name:        "Open Unemployment Rate",
				Description: "Share of the labour force that is unemployed",
				Formula:     "TPT = unemployed / labour force x 100",
				Unit:        "%",
				Interpretation: Interpretation{
					Good:   "Below 4%: full employment",
					Medium: "4-7%: acceptable",
					Bad:    "Above 7%: high unemployment",
				},
				Bands: descending("full_employment",
					above("high", 7),
					atLeast("acceptable", 4),
				),
			},
			{
				ID:          EducationMismatch,
				Name:        "Education-Employment Mismatch Index",
				Description: "Unemployment of the educated relative to the less educated",
				Formula:     "Mismatch = TPT(SMA, Diploma, Sarjana) / TPT(SD, SMP)",
				Interpretation: Interpretation{
					Good:   "Ratio below 1.2: low mismatch",
					Medium: "Ratio of 1.2-2.0: moderate mismatch",
					Bad:    "Ratio above 2.0: educated unemployment paradox",
				},
				Bands: descending("low_mismatch",
					above("high_mismatch", 2),
					atLeast("moderate_mismatch", 1.2),
				),
			},
			{
				ID:          YouthUnemploymentRatio,
				Name:        "Youth Unemployment Ratio",
				Description: "Youth (15-24) unemployment relative to the total",
				Formula:     "Youth Ratio = TPT(15-24) / TPT(total)",
				Interpretation: Interpretation{
					Good:   "Ratio below 2.0: manageable",
					Medium: "Ratio of 2.0-3.0: elevated",
					Bad:    "Ratio of 3.0 or more: critical",
				},
				Bands: descending("manageable",
					atLeast("critical", 3),
					atLeast("elevated", 2),
				),
			},
		},
		Composite: Composite{
			Name:          "Labor Market Health Index",
			Formula:       "0.45 x TPT (inverse) + 0.30 x mismatch (inverse) + 0.25 x youth ratio (inverse)",
			Normalization: "Min-max to 0-100 with inversion",
			Components: []composite.Component{
				{Name: "unemployment_rate", Weight: 0.45, Direction: composite.Inverse},
				{Name: "education_mismatch", Weight: 0.30, Direction: composite.Inverse},
				{Name: "youth_ratio", Weight: 0.25, Direction: composite.Inverse},
			},
		},
		Clustering: Clustering{
			Method:   "Percentile clustering",
			Criteria: "Lower unemployment scores higher",
			Labels:   composite.Labels{Top: "Healthy Labor Market", Middle: "Moderate Challenges", Bottom: "Severe Challenges"},
			Strategy: composite.Percentile{
				Labels: composite.Labels{Top: "Healthy Labor Market", Middle: "Moderate Challenges", Bottom: "Severe Challenges"},
			},
		},
	},
}
