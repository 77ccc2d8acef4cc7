// Package swrr provides weighted round-robin endpoint selection
//
// The selector walks the pool cyclically with a weight threshold that
// drops by the gcd of all weights once per cycle; an endpoint is
// picked whenever its weight reaches the threshold. The sequence is
// deterministic and repeats after sum(weights)/gcd picks, with every
// endpoint appearing in proportion to its weight.
//
// this is the classic weighted round-robin scan of LVS, refer details
// in following link
// http://kb.linuxvirtualserver.org/wiki/Weighted_Round-Robin_Scheduling
package swrr
