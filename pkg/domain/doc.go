/*
Package domain contains the core models of the action chain engine.

It defines the data threaded between steps, the results actions produce and the
artifacts a chain run leaves behind. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Dataset: Tabular rows tagged with the entity they belong to.
  - Task: The immutable input snapshot plus invocation parameters handed to an action.
  - Result: What an action returns (Data, Message or Empty) with its modified flag.
  - Effect: A declared target entity an action or chain is known to modify.
  - Outcome: The resolved result of a whole chain together with its aggregated effects.
  - Trace: The directed graph describing how a run went, rendered once at the end.
*/
package domain
