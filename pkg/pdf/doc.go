// Package pdf renders the downloadable supplement/medication interaction
// safety report using go-pdf/fpdf.
package pdf
