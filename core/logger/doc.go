// Package logger builds the structured loggers hybridsh components report
// their activity to.
package logger
