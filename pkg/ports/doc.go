/*
Package ports defines the driven ports (interfaces) of the decision engine.

These interfaces decouple the policy and learner from storage and from the
control-plane transport.

# Key Interfaces

  - StateStore: owns the Q-table and the trust table (memory or Redis).
  - Inspectable: optional full-table listing for introspection.
  - DistributedLocker: serialises learner updates across replicas.
  - OutcomeSource: supplies the reward and success rate that follow a decision.
*/
package ports
