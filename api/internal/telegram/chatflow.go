package telegram

import (
	"context"
	"errors"

	"compify/api/internal/chat"
	"compify/api/internal/practice"
)

func (r *Router) submit(ctx context.Context) {
	done, ok := r.Chat.Submit(ctx)
	if !ok {
		if r.Chat.Busy() {
			r.send(r.OwnerID, "⏳ Still working on the previous problem.")
		} else {
			r.send(r.OwnerID, "Nothing to send yet: write the problem or attach a photo.")
		}
		return
	}
	r.send(r.OwnerID, "🧠 Solving…")
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if reply, ok := <-done; ok {
			r.deliver(reply)
		}
	}()
}

// deliver sends the assistant reply produced by one solve.
func (r *Router) deliver(reply chat.Message) {
	switch m := reply.(type) {
	case *chat.SolutionCard:
		r.sendWithKeyboard(r.OwnerID, formatSolution(m.Solution), practiceKeyboard(m))
	case *chat.Notice:
		r.send(r.OwnerID, "⚠️ "+m.Text)
	}
}

func (r *Router) submitCandidate(ctx context.Context, text string) {
	ch, err := r.Practice.SubmitCandidate(ctx, text)
	switch {
	case errors.Is(err, practice.ErrBusy):
		r.send(r.OwnerID, "⏳ Still checking your previous answer.")
		return
	case err != nil:
		r.send(r.OwnerID, "Select a practice problem first.")
		return
	}
	r.send(r.OwnerID, "🔎 Checking…")
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		res := <-ch
		switch {
		case errors.Is(res.Err, practice.ErrStale):
			// the user left this problem
		case res.Err != nil:
			r.send(r.OwnerID, "⚠️ Could not verify: "+chat.NoticeFor(res.Err)+"\nYour answer is kept, send it again to retry.")
		default:
			r.sendWithKeyboard(r.OwnerID, formatOutcome(r.Practice.Snapshot()), closeKeyboard())
		}
	}()
}
