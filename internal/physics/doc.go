// Package physics implements the two engines that act on the ball store.
//
//   - [Packer]: setup-time packing. Relaxes overlaps with noisy pairwise
//     repulsion for a bounded budget, then deletes balls until no two
//     overlap.
//   - [Collider]: per-tick collision handling. Detects ball-ball and
//     ball-wall contacts over all pairs, keeps at most one contact per ball,
//     applies wall reflection or a mass-weighted elastic response with
//     de-penetration, then integrates positions.
//
// Both engines take the bounds as an argument on every call and never
// retain them.
//
// # Concurrency
//
// Detection runs in parallel over a snapshot of the store and funnels
// contacts through a single locked list. Detection always joins before any
// resolution starts. Resolution is fanned out over chunks of the contact
// list but every write goes through the store's exclusive section, so
// writes are serialized:
//
//	snap := w.Snapshot()
//	contacts := Dedup(c.Detect(snap, bounds, w.Workers()))
//	rep, err := c.Resolve(w, contacts)
//	c.Integrate(w, bounds, dt)
package physics
