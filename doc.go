/*
Package actionchain is an execution engine that runs an ordered list of data actions as one logical unit.

Each action receives a Task (the rows to work on plus parameters), may change data through a transaction handle, and returns a Result. The chain threads the data produced by one action into the next, decides who owns the transaction, resolves a single result for the whole run and records a Mermaid trace of what happened.

# Concept

A chain is configured with a handful of switches:

  - Single transaction (default): every action runs under one shared handle, committed once at the end or rolled back on the first failure.
  - Independent transactions: every action gets its own handle, so earlier work survives a later failure.
  - Input freeze: actions after a given index keep reading the input that action received.
  - Skip on empty input: actions that need rows are skipped when there are none.
  - Result selection: the result of a given action represents the chain, otherwise the last executed one does.

A Chain is itself an action, so chains nest. A nested chain running under a parent in single-transaction mode shares the parent's handle and never ends it.

# Usage

Chains are usually built from a YAML or JSON definition resolved against a registry of action types:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/actionchain"
		"github.com/aretw0/actionchain/pkg/actions"
		"github.com/aretw0/actionchain/pkg/domain"
		"github.com/aretw0/actionchain/pkg/registry"
		"github.com/aretw0/actionchain/pkg/schema"
	)

	func main() {
		cfg, err := schema.LoadFile("archive.yaml")
		if err != nil {
			log.Fatal(err)
		}

		reg := registry.NewRegistry()
		actions.RegisterBuiltins(reg)

		chain, err := actionchain.Build(cfg, reg)
		if err != nil {
			log.Fatal(err)
		}

		input, err := schema.LoadDataset("orders.yaml")
		if err != nil {
			log.Fatal(err)
		}

		outcome, trace, err := chain.Execute(context.Background(), domain.NewTask(input, nil), nil)
		if err != nil {
			log.Println(trace)
			log.Fatal(err)
		}
		fmt.Println(outcome.Result.Message)
	}

Custom actions implement ports.Action and can be passed to New directly or registered as a new type.
*/
package actionchain
