// Package overlay builds per-frame guidance for the capture UI: the
// document outline to stroke, the color that tracks detection quality,
// the guide circle for face challenges, and the instruction text. The
// engine emits one Command per frame, republishing the last outline on
// frames it skips, so hosts can render every preview frame without
// flicker. Render rasterizes a Command onto a frame for
// debug output from the CLI.
package overlay
