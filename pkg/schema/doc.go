// Package schema describes chain definitions as they are written in YAML or JSON.
//
// A definition lists the actions of a chain in order together with the switches
// that govern transactions, data threading and result selection:
//
//	name: archive-orders
//	use_single_transaction: true
//	use_result_of_action: 0
//	use_input_data_of_action: 0
//	actions:
//	  - type: copy
//	    args:
//	      to_entity: ORDER_ARCHIVE
//	  - type: update
//	    args:
//	      set:
//	        status: archived
//
// Definitions are checked with Validate, which reports every problem at once
// as an AggregateError of *domain.ConfigurationError values.
package schema
