package lexicon

// Aho-Corasick automaton over normalized UTF-8 bytes. Each node keeps a
// 256-way transition table so scanning never touches a map.

type acNode struct {
	next [256]int32
	fail int32
	out  []int32 // term ids ending here, own and inherited through fail links
}

type automaton struct {
	nodes []acNode
	lens  []int // byte length per term id
}

func newNode() acNode {
	var n acNode
	for i := range n.next {
		n.next[i] = -1
	}
	return n
}

func newAutomaton() *automaton {
	return &automaton{nodes: []acNode{newNode()}}
}

// add inserts pat as term id; ids must be dense and added in order
func (a *automaton) add(pat string, id int) {
	for len(a.lens) <= id {
		a.lens = append(a.lens, 0)
	}
	a.lens[id] = len(pat)
	if pat == "" {
		return
	}
	var state int32
	for i := 0; i < len(pat); i++ {
		b := pat[i]
		nxt := a.nodes[state].next[b]
		if nxt == -1 {
			nxt = int32(len(a.nodes))
			a.nodes[state].next[b] = nxt
			a.nodes = append(a.nodes, newNode())
		}
		state = nxt
	}
	a.nodes[state].out = append(a.nodes[state].out, int32(id))
}

// build wires failure links breadth first and merges outputs
func (a *automaton) build() {
	q := make([]int32, 0, len(a.nodes))
	for b := range 256 {
		if s := a.nodes[0].next[b]; s != -1 {
			a.nodes[s].fail = 0
			q = append(q, s)
		}
	}
	for qi := 0; qi < len(q); qi++ {
		r := q[qi]
		for b := range 256 {
			s := a.nodes[r].next[b]
			if s == -1 {
				continue
			}
			q = append(q, s)
			f := a.nodes[r].fail
			for f != 0 && a.nodes[f].next[b] == -1 {
				f = a.nodes[f].fail
			}
			if nxt := a.nodes[f].next[b]; nxt != -1 {
				a.nodes[s].fail = nxt
			} else {
				a.nodes[s].fail = 0
			}
			a.nodes[s].out = append(a.nodes[s].out, a.nodes[a.nodes[s].fail].out...)
		}
	}
}

// scan calls cb(start, end, id) for every raw match; cb returning false stops the scan
func (a *automaton) scan(text string, cb func(start, end, id int) bool) {
	var state int32
	for i := 0; i < len(text); i++ {
		b := text[i]
		for state != 0 && a.nodes[state].next[b] == -1 {
			state = a.nodes[state].fail
		}
		if nxt := a.nodes[state].next[b]; nxt != -1 {
			state = nxt
		}
		for _, id := range a.nodes[state].out {
			end := i + 1
			if !cb(end-a.lens[id], end, int(id)) {
				return
			}
		}
	}
}
