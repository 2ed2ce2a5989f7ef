// Package harness executes end-to-end preparation scenarios from YAML.
//
// A scenario names a dataset fixture, a run configuration, and the
// expectations to hold against the outcome. The harness runs the real
// pipeline (no stage is stubbed) and records every violated expectation.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: trial_even_split
//	description: "Unshuffled 60/20/20 over a balanced trial cohort"
//	dataset:
//	  cohort: { negatives: 16, positives: 16 }
//	config:
//	  seed: 42
//	  shuffle: false
//	run_id: run-trial-even
//	expect:
//	  partitions: { train: 20, validation: 6, test: 6 }
//	  balance: { tolerance: 0.001 }
//
// The dataset is either a synthetic cohort (staged into a temporary
// directory at run time) or a csv path resolved relative to the scenario
// file. Config fields absent from the file keep the pipeline defaults.
// A scenario that must abort declares the error it expects instead of
// result checks:
//
//	expect:
//	  error: EMPTY_STRATUM
//
// # Expectation Types
//
// The following checks are supported under expect:
//
//   - error: the run fails with a message containing the given substring
//   - partitions: exact train/validation/test row counts, plus the
//     structural checks that the three index sets are disjoint and cover
//     every row
//   - balance: every partition's class fractions stay within tolerance of
//     the whole dataset's
//   - transform: standardized training columns have mean 0 and standard
//     deviation 1 within tolerance
//
// # Deterministic Execution
//
// Every run pins the run ID (run_id, default "test-run-default") and
// discards log output, so the outcome depends only on the fixture and the
// configuration. Unshuffled scenarios are additionally order-deterministic,
// which makes their rendered reports stable enough for golden snapshot
// comparison.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/trial_even_split.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
//
// Or compare the rendered report against a golden snapshot:
//
//	harness.RunWithGolden(t, scenario)
package harness
