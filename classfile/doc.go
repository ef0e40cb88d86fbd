// Package classfile implements an in-memory structural model of the JVM
// class-file container format.
//
// This package contains:
//   - Bounds-checked parsing of the binary container (magic, constant pool,
//     fields, methods, attributes)
//   - Deterministic re-serialization (parse then serialize is byte-identity
//     on untouched input)
//   - An append-only constant pool arena with stable u16 indices
//   - Opcode metadata and instruction-stream iteration over Code bodies
//   - Structural access to runtime annotation attributes
//
// The model is deliberately mutation-friendly in exactly one direction:
// entries may be appended to the pool, methods appended to the class, and
// Code bodies replaced, so every index that existed at parse time stays
// valid. Nothing is ever removed or reordered.
package classfile
