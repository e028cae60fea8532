package services

import (
	"math/rand"

	"github.com/Mims9141/structuredchat/models"
)

// qnaMaxPasses bounds the draw loop. One pass can land on an exhausted order,
// one rebuild after that always either yields a question or proves the pool
// is empty.
const qnaMaxPasses = 2

// nextQuestionLocked draws the next Q&A question: walk the shuffled viewer
// order from the cursor and pop the oldest pending question of the first
// viewer that has one. Each viewer gives up at most one question per pass, so
// a prolific asker cannot starve the rest; the order is reshuffled whenever it
// runs out.
func (r *debateRoom) nextQuestionLocked() (models.Question, bool) {
	for pass := 0; pass < qnaMaxPasses; pass++ {
		for r.cursor < len(r.order) {
			id := r.order[r.cursor]
			r.cursor++
			v, ok := r.viewers[id]
			if !ok || len(v.pending) == 0 {
				continue
			}
			q := v.pending[0]
			v.pending = v.pending[1:]
			return q, true
		}
		r.reshuffleLocked()
		if len(r.order) == 0 {
			break
		}
	}
	return models.Question{}, false
}

// reshuffleLocked rebuilds the draw order from the viewers that still have
// questions pending and resets the cursor.
func (r *debateRoom) reshuffleLocked() {
	r.order = r.order[:0]
	for id, v := range r.viewers {
		if len(v.pending) > 0 {
			r.order = append(r.order, id)
		}
	}
	rand.Shuffle(len(r.order), func(i, j int) {
		r.order[i], r.order[j] = r.order[j], r.order[i]
	})
	r.cursor = 0
}
