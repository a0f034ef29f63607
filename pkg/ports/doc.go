/*
Package ports defines the driven ports the hosting side of persephone plugs into.

The narrative core performs no I/O. Hosts persist a run as an opaque string
under a key and, when several replicas serve the same player, coordinate
through a distributed lock.

# Key Interfaces

  - SaveStore: keyed storage for serialized runs (memory, file, Redis).
  - DistributedLocker: cross-process locking for concurrent session access.
*/
package ports
