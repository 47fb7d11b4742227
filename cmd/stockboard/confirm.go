package main

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// relay forwards messages from background goroutines into the running
// program. Sends are asynchronous so callers on the UI goroutine never block
// on the program's own message loop.
type relay struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *relay) attach(p *tea.Program) {
	r.mu.Lock()
	r.p = p
	r.mu.Unlock()
}

func (r *relay) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		go p.Send(msg)
	}
}

// confirmRequestMsg asks the UI to show the unpin modal. The answer goes back
// on reply, which is buffered so the UI never blocks.
type confirmRequestMsg struct {
	ticker string
	reply  chan bool
}

// alertMsg reports an unpin failure that the user must acknowledge.
type alertMsg struct {
	ticker string
	err    error
}

// pinStateMsg signals that the coordinator's state changed.
type pinStateMsg struct{}

// modalConfirmer implements pin.Confirmer by round-tripping through the UI.
type modalConfirmer struct {
	send func(tea.Msg)
}

func (c modalConfirmer) Confirm(ctx context.Context, ticker string) (bool, error) {
	reply := make(chan bool, 1)
	c.send(confirmRequestMsg{ticker: ticker, reply: reply})
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
