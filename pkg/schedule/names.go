package schedule

import (
	"fmt"
	"strconv"
)

// OutputNames derives one output raster name per interval, keyed by the
// interval's end time and zero-padded to the digit width of the final end
// time so that lexicographic order equals chronological order:
//
//	OutputNames("fire_spread", [(0,1),(1,26),(26,150)])
//	  -> ["fire_spread_001", "fire_spread_026", "fire_spread_150"]
//
// A single-digit maximum degenerates to no padding.
func OutputNames(basename string, intervals []Interval) []string {
	if len(intervals) == 0 {
		return nil
	}
	width := len(strconv.Itoa(int(intervals[len(intervals)-1].End)))
	names := make([]string, 0, len(intervals))
	for _, iv := range intervals {
		names = append(names, fmt.Sprintf("%s_%0*d", basename, width, int(iv.End)))
	}
	return names
}
