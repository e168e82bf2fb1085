// Package harness runs conformance scenarios against the engine.
//
// A scenario is a YAML file listing batches to run in order on one engine,
// each with optional expectations, followed by assertions over the final
// database and the batch journal:
//
//	name: incremental_tests
//	description: "Only tests whose dependencies changed are run"
//	steps:
//	  - tests:
//	      - path: a.penta
//	        content: |
//	          def one fn 1 end-fn,
//	          test one 1 eq assert end-test,
//	    expect:
//	      output: "PASS a.penta.1\n"
//	      executed: [a.penta.1]
//	  - repl: "bar"
//	    expect:
//	      error: { code: RESOLUTION_ERROR, message: "Undefined reference: bar" }
//	assertions:
//	  - type: census
//	    table: functions
//	    expect: { old_only: 1 }
//	  - type: journal_outcome
//	    step: 2
//	    outcome: rolled_back
//	  - type: test_result
//	    test: a.penta.1
//	    passed: true
//
// # Determinism
//
// Each scenario gets a fresh engine with an in-memory journal, a
// testutil.DeterministicClock and batch ids "step-1", "step-2", ..., so the
// transcript of a scenario is byte-stable and can be compared against a
// golden file with RunWithGolden.
package harness
