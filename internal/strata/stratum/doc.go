// Package stratum owns the stratum volume: classification of 3D points
// into geological layers defined as z-offset bands relative to a base
// surface.
//
// Layers are scanned in caller order and the first layer whose band holds
// the point wins. Overlapping or unordered layer lists are not rejected or
// re-sorted; the caller orders them.
package stratum
