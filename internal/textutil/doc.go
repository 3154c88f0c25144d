// Package textutil normalizes subtitle text and media names for display and
// for use in clip filenames.
//
// Subtitle lines are NFC-normalized and whitespace-collapsed so the same line
// compares equal however the player delivered it. Display truncation counts
// East Asian wide characters as two cells so tables stay aligned.
package textutil
