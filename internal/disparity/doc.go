// Package disparity wraps the dense stereo matcher. The Adapter packs
// captured frames into the matcher's buffer layout and returns left and
// right reference disparity maps; BlockMatcher is the matcher used when no
// other Engine is supplied.
package disparity
