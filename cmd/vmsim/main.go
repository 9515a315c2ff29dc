// The vmsim command simulates how an operating system manages virtual
// memory. It executes scripted memory operations against a simulated
// kernel and records every operation for later inspection.
package main

func main() {
	Execute()
}
