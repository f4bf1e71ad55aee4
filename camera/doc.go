// Package camera holds the viewport state of the plotter and the grid step controller.
//
// World coordinates are mathematical coordinates multiplied by the pixels-per-unit constant,
// with y pointing up. Screen coordinates are framebuffer pixels with y pointing down.
package camera
