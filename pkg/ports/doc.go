/*
Package ports defines the driven ports (interfaces) around the Humdrum dispatch core.

These interfaces decouple session handling from concrete backends, so that the
same application can keep its models in memory during development and in Redis
when several replicas serve traffic.

# Key Interfaces

  - ModelStore: persists and loads the per-session Model.
  - DistributedLocker: serialises dispatches on the same session across instances.
*/
package ports
