// Package cluster3d builds 3D hits from wire hits on the X, V and U planes.
//
// Responsibilities: splitting wire hits by plane, finding the event time
// zero from the trigger (PMT) hits, matching X/V/U triplets that agree in
// drift time and cross at one point, fusing each triplet into a Hit3D, and
// sharing each wire hit's charge among the Hit3Ds that use it so the event
// charge is not counted more than once.
// Key types: Clusterer, Hit3D, Result.
//
// Wire hits live in a hits.Arena for the duration of one Process call and
// are referenced by index; nothing is retained between calls.
// No SQL/database code is allowed in this package.
package cluster3d
