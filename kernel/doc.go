// Package kernel provides the component that simulates the
// memory-management core of a small operating system. The component owns
// the physical frame table, the content of the frames, the set of
// processes, and the page-table base of the process that currently runs. It
// allocates and frees pages, translates virtual pages to frames, resolves
// copy-on-write page faults, and switches between processes, forking new
// ones on demand.
package kernel
