package util

import (
	"log"
)

// DebugMode switches engine diagnostics on. The CLI sets it from the configuration.
var DebugMode = false

func DebugPrintln(args ...any) {
	if DebugMode == true {
		log.Println(args...)
	}
}

func DebugPrintf(format string, args ...any) {
	if DebugMode == true {
		log.Printf(format, args...)
	}
}
