// Package render samples compiled formulas across the camera viewport and draws grid, axes,
// labels and curves onto a Target.
package render
