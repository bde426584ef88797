package export

import "fmt"

// FrameIndex formats the index shared by a frame's depth and grey files:
// a five digit counter, or the capture timestamp as %015.10f.
func FrameIndex(seq uint64, timestamp float64, useTimestamp bool) string {
	if useTimestamp {
		return fmt.Sprintf("%015.10f", timestamp)
	}
	return fmt.Sprintf("%05d", seq)
}

// DepthName and GreyName return the file names for index.
func DepthName(index string) string { return "ELAS-" + index + ".pdm" }

func GreyName(index string) string { return "Grey-" + index + ".pgm" }
