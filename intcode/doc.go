// Package intcode implements the Intcode virtual machine and its assembler.
//
// A Machine executes a flat program of signed 64-bit words. Each instruction
// word carries an opcode in its two low decimal digits and one addressing mode
// digit per parameter above them: position (0), immediate (1) or relative (2).
// Memory is fixed for the loaded program and sparse, defaulting to zero,
// beyond it. Input and output are synchronous callbacks.
//
// The assembler provides a small assembly language for Intcode, supporting
// macros, labels, equates, and compile-time expression evaluation.
package intcode
