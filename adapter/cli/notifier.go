package cli

import (
	"context"
	"io"
	"sync"

	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/subscribers"
)

// PrintNotifier writes reminder nudges to w.
func PrintNotifier(w io.Writer) subscribers.Notifier {
	var mu sync.Mutex
	return func(_ context.Context, n subscribers.Nudge) {
		mu.Lock()
		defer mu.Unlock()
		ui.Warn(w, ui.IconBell+"reminder: "+n.Text)
	}
}
