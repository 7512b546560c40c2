// Package locate resolves "what content region sits under this point" for
// the four renderer families. Each family gets its own strategy behind a
// common interface; a chain tries the family strategy first and degrades
// through weaker ones, ending at the whole page. Absence of a region is a
// valid low-confidence outcome, never an error.
package locate
