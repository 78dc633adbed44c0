// Package source turns external maze descriptions into 0/1 matrices that
// grid.New accepts.
//
// Supported inputs:
//   - Text: whitespace separated 0/1 rows (ParseText, WriteText)
//   - Layouts: character rows using '#' for walls and '.' for open cells,
//     with optional 'S' and 'E' markers (ParseLayout, FormatLayout)
//   - Images: photographs or scans of a maze, thresholded and sampled on a
//     fixed cell grid (FromImage, LoadImage)
package source
