// Command grainstats measures the objects of a segmented voxel volume and
// reports per-phase size statistics, and samples the parametric size
// distributions used to describe them.
package main

import (
	"errors"
	"os"

	"grainstats/pkg/filter"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// 130 is the conventional exit status after SIGINT
		if errors.Is(err, filter.ErrCancelled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
