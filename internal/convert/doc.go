// Package convert defines the requests accepted by the converter front-end
// and the results its backends hand back. Results are values: backends never
// return a Go error for a conversion that failed, they return a Result that
// carries a typed Failure.
package convert
