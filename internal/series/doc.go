// Package series implements the measurement object model persisted by dirdb.
//
// A [DataSeries] is a named numeric column stored as a row of the
// "data_series" table with its values in a payload file. Time series carry
// the unix time of their t=0; value series reference the time series they are
// sampled on. A [Measurement] owns its series and stores their row ids.
package series
