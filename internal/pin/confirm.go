package pin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks the user a blocking yes/no question before an unpin.
type Confirmer interface {
	Confirm(ctx context.Context, ticker string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, ticker string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, ticker string) (bool, error) {
	return f(ctx, ticker)
}

// AutoConfirm agrees to every unpin.
var AutoConfirm Confirmer = ConfirmFunc(func(ctx context.Context, ticker string) (bool, error) {
	return true, ctx.Err()
})

// PromptConfirmer asks on Out and reads the answer from In. Only "y" or
// "yes" confirm; anything else, including EOF, declines.
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (p PromptConfirmer) Confirm(ctx context.Context, ticker string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := fmt.Fprintf(p.Out, "Unpin %s? [y/N] ", ticker); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
