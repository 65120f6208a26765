package trait_inference

import (
	"regexp"
)

// Measurement pattern names as they appear in EnhancedSVO.MeasurementData.
const (
	PatternSizeMeasurements = "size_measurements"
	PatternQuantityCounts   = "quantity_counts"
	PatternRatios           = "ratios"
	PatternPercentages      = "percentages"
	PatternTemperatures     = "temperatures"
	PatternTimePeriods      = "time_periods"
)

// measurementPattern is one named measurement shape.  The patterns are
// compiled once at package init; a malformed pattern fails the process
// immediately rather than surfacing per-request.
type measurementPattern struct {
	name string
	re   *regexp.Regexp
}

var measurementPatterns = []measurementPattern{
	{PatternSizeMeasurements, regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(mm|cm|inches|inch|m)\b`)},
	{PatternQuantityCounts, regexp.MustCompile(`(?i)(\d+)\s*(flowers?|blooms?|petals?|sepals?)\b`)},
	{PatternRatios, regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?::|to|ratio)\s*(\d+(?:\.\d+)?)`)},
	{PatternPercentages, regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%`)},
	{PatternTemperatures, regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*°?\s*([cf])\b`)},
	{PatternTimePeriods, regexp.MustCompile(`(?i)(\d+)\s*(days?|weeks?|months?)\b`)},
}

// ExtractMeasurements scans text against every measurement pattern and
// returns the raw capture groups keyed by pattern name.  Patterns with no
// match contribute no key, so an empty result is a nil-length map rather
// than a map of empty slices.
func ExtractMeasurements(text string) map[string][][]string {
	found := make(map[string][][]string)
	for _, p := range measurementPatterns {
		matches := p.re.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}
		groups := make([][]string, 0, len(matches))
		for _, m := range matches {
			// Drop the full-match element, keep capture groups only.
			groups = append(groups, m[1:])
		}
		found[p.name] = groups
	}
	return found
}
