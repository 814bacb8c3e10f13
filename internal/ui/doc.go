// Package ui holds the Bubble Tea front ends: a progress view shown while the
// pipeline runs and a collapsible browser for the parsed types.
package ui
