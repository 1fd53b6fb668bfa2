/*
Package domain contains the core types of the forwarding-decision engine.

It defines the identities and values the engine learns over, and is kept free of
I/O and persistence concerns so that every adapter can share it.

# Key Entities

  - NodeID: opaque identity of a network endpoint (usually a hardware address).
  - Action: an egress port, or the Flood sentinel meaning "all ports".
  - ActionValues: the ordered Q-values recorded for a (source, destination) pair.
  - Hyperparameters: learning rate, discount factor and the trust constants.
  - Decision / Outcome: what the policy chose, and what the network reported back.
*/
package domain
