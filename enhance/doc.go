// Package enhance rewrites entity classes to route field access through
// synthesized accessor methods.
//
// This package contains:
//   - Entity classification by marker annotation
//   - Pluggable enhancement strategies (plain accessors, runtime-hooked
//     interception)
//   - Class-local rewriting of field access instructions
//   - The sentinel attribute that makes enhancement idempotent
//
// Strategies mutate a classfile.Class in place and report whether they
// changed it. They never touch the filesystem and never log; orchestration
// and presentation belong to the pipeline and its caller.
package enhance
