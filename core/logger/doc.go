// Package logger records shell events as newline delimited JSON so sessions
// can be summarized later with ReadJSONLinesLog and Report.
package logger
