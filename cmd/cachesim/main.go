// Command cachesim replays a memory-access trace through a simulated cache
// hierarchy and reports hit/miss statistics.
package main

func main() {
	Execute()
}
