/*
Package session implements per-session dispatch and persistence orchestration.

The dispatch core assumes that a model is used by one dispatch cycle at a
time. Manager enforces that for front controllers serving concurrent traffic:
every operation on a session runs under a process-local lock and, optionally,
a distributed lock shared by all replicas.
*/
package session
