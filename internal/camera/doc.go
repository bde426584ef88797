// Package camera captures synchronized stereo image pairs.
//
// Cameras are opened from a driver URI of the form
//
//	driver:[key=value,...]//path
//
// Supported drivers are "synthetic" (random-dot pairs with a known
// disparity), "files" (replay of PGM pairs from a directory) and "rectify"
// (wraps another driver and exposes a rectified two-camera rig).
package camera
