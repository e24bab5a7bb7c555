// Package ui renders everything embed prints for humans: status lines,
// guidance notes, spinners, tables, and the json and yaml forms of list
// output. Printer implements provision.Reporter.
package ui
