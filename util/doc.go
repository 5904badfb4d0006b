// Package util holds small helpers shared by the server and export code:
// size parsing, file name sanitizing and pointer helpers.
package util
