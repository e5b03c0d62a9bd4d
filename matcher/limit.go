package matcher

// matchesLimit implements §4.4's positional validation at a COMPLETE
// node: rejects an out-of-order child under ORDERED, or a span whose
// average inter-child gap exceeds the node's proximity limit. Nodes
// without LIMIT pass automatically.
func matchesLimit(c *Candidate) bool {
	n := c.Node
	if !n.HasLimit() {
		return true
	}

	arity := len(c.Elements)
	if arity <= 1 {
		return true
	}

	sum := 0
	for i, e := range c.Elements {
		if n.IsOrdered() && i > 0 && c.Elements[i-1].startToken() >= e.startToken() {
			return false
		}
		sum += e.wordLength()
	}

	span := int(c.EndToken-c.StartToken) + 1
	return span-sum <= n.Limit*(arity-1)
}
