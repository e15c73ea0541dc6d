/*
Package ports defines the driven ports (interfaces) of the action chain engine.

These interfaces decouple the chain orchestration from the actions it runs and
from the data sources that give transactions their meaning.

# Key Interfaces

  - Action: An opaque invocable step. The engine only sees its identity, its
    minimum input rows, its declared effects and the result it returns.
  - Transaction: A scope token given to actions; committed or rolled back by its owner.
  - TransactionManager: Creates new transaction handles.
  - RowWriter: Optional capability of a transaction to stage row writes.
  - ChainRepository: Loads chain definitions by ID (e.g. from Loam).
*/
package ports
