// Package planner turns validated chapters into the ordered, immutable job
// list the dispatcher executes.
//
//   - Job, Options (types.go)
//   - Build: input/output validation, destination allocation through
//     naming.Policy, existing-file conflict check, output directory
//     creation (planner.go)
package planner
