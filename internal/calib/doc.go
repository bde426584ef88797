// Package calib resolves the stereo camera model used for depth conversion.
//
// A rig is either handed over by a rectifying camera driver or loaded from a
// calibration XML file. Exactly two cameras are required; the baseline is the
// length of the translation of the relative pose between camera 0 and
// camera 1.
package calib
