// Package policy is the trust boundary between planning and execution.
//
// A Plan from the planner is untrusted intent. Validate checks every task
// against a fixed rule set and, only if all of them pass, promotes the
// plan into an ApprovedPlan, the only form the executor accepts:
//
//   - Command rules: sudo detection and network utility denial, matched on
//     the case-insensitive base name of the executable
//   - Path rules: lexical confinement of CreateDir/WriteFile targets to the
//     working directory
//
// Validation is fail-fast, deterministic and free of I/O and logging.
// Commands are inspected as given; arguments interpreted by a shell
// (sh -c "curl ...") are not analyzed.
package policy
