package tetris

// SequenceSet represents a set of action sequences stored as a trie.
//
// Unlike a plain map of Sequences, a SequenceSet can answer how far an
// arbitrary (possibly very long) list of actions follows any member, which
// is how a player's inputs are compared against every optimal sequence at
// once.
//
// The nil pointer is usable as an empty set.
type SequenceSet struct {
	isMember bool                      // Whether the path to this node is in the set.
	sub      [actionLimit]*SequenceSet // "map" from Action to a SequenceSet.
}

// NewSequenceSet creates a SequenceSet containing the given sequences.
func NewSequenceSet(seqs ...[]Action) *SequenceSet {
	s := new(SequenceSet)
	for _, seq := range seqs {
		s.Add(seq)
	}
	return s
}

// Add adds the sequence to the SequenceSet.
// Add panics if the sequence contains an invalid action.
func (s *SequenceSet) Add(seq []Action) {
	node := s
	for _, a := range seq {
		if a == NoAction || a >= actionLimit {
			panic("cannot add sequences with invalid actions to a SequenceSet")
		}
		next := node.sub[a]
		if next == nil {
			next = new(SequenceSet)
			node.sub[a] = next
		}
		node = next
	}
	node.isMember = true
}

// Contains returns if the exact sequence is contained in the SequenceSet.
func (s *SequenceSet) Contains(seq []Action) bool {
	node := s.follow(seq)
	return node != nil && node.isMember
}

// CommonPrefix returns the length of the longest prefix of seq that is also
// a prefix of some member of the SequenceSet.
func (s *SequenceSet) CommonPrefix(seq []Action) int {
	if s == nil {
		return 0
	}
	node := s
	for idx, a := range seq {
		if a >= actionLimit || node.sub[a] == nil {
			return idx
		}
		node = node.sub[a]
	}
	return len(seq)
}

// follow returns the node reached by walking seq or nil.
func (s *SequenceSet) follow(seq []Action) *SequenceSet {
	node := s
	for _, a := range seq {
		if node == nil || a >= actionLimit {
			return nil
		}
		node = node.sub[a]
	}
	return node
}
