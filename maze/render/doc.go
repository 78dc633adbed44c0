// Package render draws grid snapshots as text or PNG images.
package render
