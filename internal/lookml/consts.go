package lookml

import "strings"

// Looker dimension types derived from BigQuery column types.
var lookerTypeByBigQuery = map[string]string{
	"INT64":      "number",
	"INTEGER":    "number",
	"FLOAT":      "number",
	"FLOAT64":    "number",
	"NUMERIC":    "number",
	"BIGNUMERIC": "number",
	"BOOLEAN":    "yesno",
	"BOOL":       "yesno",
	"STRING":     "string",
	"TIMESTAMP":  "timestamp",
	"DATETIME":   "datetime",
	"DATE":       "date",
	"TIME":       "string",
	"GEOGRAPHY":  "string",
	"BYTES":      "string",
	"ARRAY":      "string",
	"STRUCT":     "string",
}

// MapBigQueryType maps a BigQuery data type to its Looker dimension type.
// Composite markers and precision suffixes are stripped first. Unknown
// types yield the empty string; no dimension is created for them.
func MapBigQueryType(columnType string) string {
	if columnType == "" {
		return ""
	}
	if i := strings.IndexByte(columnType, '<'); i >= 0 {
		columnType = columnType[:i]
	}
	if i := strings.IndexByte(columnType, '('); i >= 0 {
		columnType = columnType[:i]
	}
	return lookerTypeByBigQuery[columnType]
}

// Looker type classes.
var (
	scalarLookerTypes   = map[string]bool{"number": true, "yesno": true, "string": true}
	dateTimeLookerTypes = map[string]bool{"datetime": true, "timestamp": true}
)

// DateTimeframes are the timeframes generated for date columns.
var DateTimeframes = []string{
	"date",
	"day_of_month",
	"day_of_week",
	"day_of_week_index",
	"week",
	"week_of_year",
	"month_name",
	"month",
	"month_num",
	"quarter",
	"quarter_of_year",
	"year",
}

// TimeTimeframes are the timeframes generated for datetime and timestamp
// columns.
var TimeTimeframes = []string{
	"raw",
	"time",
	"time_of_day",
}

// measureTypes are the Looker measure types supported for generation.
var measureTypes = map[string]bool{
	"count":             true,
	"count_distinct":    true,
	"sum":               true,
	"sum_distinct":      true,
	"average":           true,
	"min":               true,
	"max":               true,
	"median":            true,
	"percentile":        true,
	"percentile_approx": true,
	"stddev":            true,
	"stddev_pop":        true,
	"stddev_samp":       true,
	"variance":          true,
	"var_pop":           true,
	"var_samp":          true,
}

// valueFormatNames are the Looker built-in value formats a dimension or
// measure may reference.
var valueFormatNames = map[string]bool{
	"decimal_0": true,
	"decimal_1": true,
	"decimal_2": true,
	"decimal_3": true,
	"decimal_4": true,
	"usd_0":     true,
	"usd":       true,
	"gbp_0":     true,
	"gbp":       true,
	"eur_0":     true,
	"eur":       true,
	"id":        true,
	"percent_0": true,
	"percent_1": true,
	"percent_2": true,
	"percent_3": true,
	"percent_4": true,
}

// validTimeframes is the union of date and time timeframes plus the ISO
// extensions Looker accepts in explicit timeframe overrides.
var validTimeframes = func() map[string]bool {
	m := make(map[string]bool)
	for _, tf := range DateTimeframes {
		m[tf] = true
	}
	for _, tf := range TimeTimeframes {
		m[tf] = true
	}
	for _, tf := range []string{"hour", "hour_of_day", "minute", "millisecond", "iso_week_of_year", "iso_year"} {
		m[tf] = true
	}
	return m
}()
