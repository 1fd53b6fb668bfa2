/*
Package controller adapts the decision engine to a switch control channel.

It handles the two events a reactive controller receives: a switch connecting
(answered with a table-miss flow entry that sends unmatched frames to the
controller) and a packet-in (answered with a packet-out carrying the engine's
chosen action, followed by outcome feedback to the learner).

Messages are plain structs; encoding them for a specific OpenFlow library is the
transport's job.
*/
package controller
