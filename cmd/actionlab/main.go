// actionlab analyzes cricket bowling deliveries from pose-landmark clips.
//
// Usage:
//
//	actionlab analyze clip.json [--hand R] [--fps 30] [-o result.json]
//	actionlab batch a.json b.json ... [--parallelism 4]
//	actionlab extract --frames ./frames --fps 30 --hand R -o clip.json
//	actionlab config validate
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
