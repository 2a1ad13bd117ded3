// Package force implements a position-Verlet force-directed layout.
//
// A [Simulation] holds one body per bound node. Each [Simulation.Tick]
// applies link springs, gravity towards the frame centre and pairwise charge,
// then integrates positions with friction. The layout is "hot" while its
// alpha (cooling parameter) stays above a threshold: [Simulation.Start] sets
// alpha to [DefaultAlpha], every tick multiplies it by [AlphaDecay] and the
// run converges once it drops below [AlphaMin].
//
// Re-binding keeps bodies by node id, so a layout that grows incrementally
// continues from where it was ("warm start"):
//
//	sim := force.New(force.DefaultOptions(1200, 440))
//	sim.Bind(nodes, links)
//	sim.Start()
//	sim.Run(ctx, func(f force.Frame) { draw(f) })
//
// A Simulation is not safe for concurrent use; callers serialize access.
package force
