// Package parallel runs several agents concurrently for one invocation.
//
// It provides:
//   - ParsePair and Prepare: turn agent:task arguments into validated requests
//   - Batch: fans requests out to independent supervised runs
//   - Reporters: progressive text and JSONL output in completion order
//
// Each run has its own timeout and process; one run failing or timing out
// never cancels its siblings. Results are kept in input order.
package parallel
