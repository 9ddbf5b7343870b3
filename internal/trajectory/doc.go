// Package trajectory reads the text dumps written by the N-body simulator.
//
// A dump is a sequence of step blocks:
//
//	# Step 0, Time: 0 s
//	Name Mass Px Py Pz Vx Vy Vz
//	Sun 1.989e30 0 0 0 0 0 0
//	Earth 5.972e24 1.496e11 0 0 0 29780 0
//
// [Parse] turns a dump into an immutable [Trajectory]. Records are shared
// read-only by every consumer; index i names the same body in every record.
//
// # Errors
//
// Any malformed body line or step header fails the whole load with a
// [*FormatError]. No partial trajectory is returned.
package trajectory
