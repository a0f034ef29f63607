/*
Package domain contains the core data model of the persephone narrative engine.

It defines the story document (nodes, choices, conditions, effects, lore and
hidden commands) and the mutable run state that the engine drives through the
graph. The package is kept free of I/O and persistence concerns so that every
adapter (stores, HTTP, terminal) can share the same types.

# Key Entities

  - Story: The read-only story document supplied once at engine construction.
  - Node: A unit of narrative content, either Regular (branching) or Ending (terminal).
  - Choice: An edge from a Regular node to a target node, gated by Conditions and carrying Effects.
  - State: The player state record (stats, flags, lore discoveries, roam mode).
  - Snapshot: The persisted run triple {currentId, state, history}.
  - Diagnostic: A non-fatal report about bad story data or caller misuse.
*/
package domain
