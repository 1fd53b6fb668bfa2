/*
Package trustroute is a forwarding-decision engine for a software-defined network
control plane.

Given the source and destination of an observed frame, it chooses an egress port by
blending a Q-learning value estimate with a per-node trust score. Sources whose trust
falls below a threshold are always flooded, whatever the learned values say.

# Concept

The engine keeps two tables behind a StateStore port: a Q-table keyed by the ordered
(source, destination) pair, and a trust table keyed by node. A new pair starts with a
single FLOOD action seeded with a random value in [0,1); learned ports are added as
outcomes arrive. Because there is no topology model, the "next state" of a Q update
is approximated by the best value recorded for the reverse pair.

# Key Features

  - Deterministic tie-breaking: among equal values the action inserted first wins.
  - Hard trust gate: trust below the threshold forces FLOOD.
  - Pluggable state: in-memory by default, Redis for replicas sharing one table.
  - Concurrency-safe: seeding is atomic and learner updates are serialised per key.

# Usage

	eng, err := trustroute.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	action, err := eng.OnFrameObserved(ctx, src, dst, []domain.Action{1, 2})
	if err != nil {
		log.Fatal(err)
	}

	// ... the transport forwards the frame via action ...

	err = eng.OnOutcomeObserved(ctx, domain.Outcome{
		Src: src, Dst: dst, Action: action,
		Reward: 1, Node: src, SuccessRate: 0.9,
	})

For a switch-facing pipeline (frame parsing, packet-out construction and outcome
feedback) see package controller.
*/
package trustroute
