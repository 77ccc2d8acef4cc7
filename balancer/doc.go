// package balancer provides service of dispatching requests between
// the members of a fixed weighted server pool
//
// Each virtual server owns one listener and one smooth weighted
// round-robin pool. The pool is built once from the configuration and
// never changes while the virtual server is running; the selection
// cursor lives inside the pool and is safe for concurrent requests.
package balancer
