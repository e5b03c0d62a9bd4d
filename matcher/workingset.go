package matcher

// workingSet is the FIFO of Candidates for one non-terminal's node_idx,
// ordered oldest-first by the order candidates were seeded (§4.4
// "maintains an array wrk[node_idx] of match sequences").
type workingSet struct {
	seq []*Candidate
}

func (ws *workingSet) len() int { return len(ws.seq) }

func (ws *workingSet) pushBack(c *Candidate) { ws.seq = append(ws.seq, c) }

func (ws *workingSet) popFront() *Candidate {
	c := ws.seq[0]
	ws.seq = ws.seq[1:]
	return c
}

func (ws *workingSet) removeAt(i int) *Candidate {
	c := ws.seq[i]
	ws.seq = append(ws.seq[:i], ws.seq[i+1:]...)
	return c
}
