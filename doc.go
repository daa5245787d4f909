/* Command opstack translates a small imperative language into postfix
instructions, and runs them on a stack machine.

The source language has typed scalar declarations, one and two dimensional
arrays, if/else, while, for, read and write:

	int n;
	read(n);
	int A[8];
	for (int i = 0; i < n; i = i + 1) {
		read(A[i]);
	}
	int sum = 0;
	for (int i = 0; i < n; i = i + 1) {
		sum = sum + A[i];
	}
	write(sum);

Translation produces a flat instruction stream, rendered one word at a time.
Operands come before the operator that consumes them; names travel inline
ahead of the opcode that binds or reads them:

	int x = 2 + 3 * 4;             =>  2 3 4 * + x :=
	A[1] = 9;                      =>  A 1 9 array_set
	while (x < 9) { x = x + 1; }   =>  m0: x 9 < m1 jf x 1 + x := m0 j m1:

Control flow lowers onto labels (m0, m1, ...), unconditional jumps (j), and
jumps taken when a popped condition is zero (jf).

The machine executes one instruction at a time against an operand stack, a
scalar store, and 1-D and 2-D array stores. Unbound scalars read as integer
0. Any failure (stack underflow, division by zero, an undefined label, an
unallocated array, an out of bounds index, or exhausted input) halts the
machine at the failing instruction, leaving the rest of its state as it was.

Usage:

	opstack [flags] [FILE ...]

Each FILE is translated and run in turn against one machine, so later files
see the bindings made by earlier ones; read takes values from standard
input. With no files, or with -repl, an interactive prompt translates and
runs each entered line.

Flags:

	-ops        print each instruction stream instead of running it
	-load       treat files as instruction streams rather than source
	-dump       print the machine state after running
	-trace      log every executed instruction
	-mem-limit  limit the number of allocated array cells
	-timeout    limit the total run time
	-repl       start the interactive prompt after any files

*/
package main
