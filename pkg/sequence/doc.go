// Package sequence implements a linear chain of typed inference steps.
//
// A sequence is declared as an ordered list of steps, each with a typed
// input and output contract. The package validates at load time that every
// field shared by two adjacent steps carries the same type, so a declared
// sequence is known to be internally consistent before any traffic is
// accepted.
//
// Execution is delegated to an operator-supplied Runner: the engine verifies
// the input of a step, invokes the runner, verifies the output, and threads
// it into the next step's input. Steps can be run one at a time (with an
// explicit session tracking progress), as a whole sequence, or across every
// row of a tabular batch.
package sequence
