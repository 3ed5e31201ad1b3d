/*
Package ports defines the driven ports (interfaces) for the vali engine.

These interfaces decouple the engine from external implementations, allowing
scheme definitions to live in memory, on disk or in Redis.

# Key Interfaces

  - SchemeStore: Persists raw scheme definitions (YAML or JSON) by name.
  - DistributedLocker: Serializes scheme writes across engine replicas.
*/
package ports
