package wait

import (
	"context"
	"fmt"
)

// ElementLocator reports whether a selector matches in the current document.
type ElementLocator interface {
	Exists(ctx context.Context, selector string) (bool, error)
}

// NavigationWatcher reports whether a pending navigation has landed.
type NavigationWatcher interface {
	DocumentReplaced(ctx context.Context) (bool, error)
}

// ElementPresent holds once selector matches an element.
func ElementPresent(p ElementLocator, selector string) Condition {
	return Condition{
		Name: fmt.Sprintf("element %s", selector),
		Check: func(ctx context.Context) (bool, error) {
			return p.Exists(ctx, selector)
		},
	}
}

// ElementAbsent holds once selector no longer matches.
func ElementAbsent(p ElementLocator, selector string) Condition {
	return Condition{
		Name: fmt.Sprintf("removal of %s", selector),
		Check: func(ctx context.Context) (bool, error) {
			found, err := p.Exists(ctx, selector)
			if err != nil {
				return false, err
			}
			return !found, nil
		},
	}
}

// NavigationSettled holds once the marked document has been replaced by a
// fully loaded one.
func NavigationSettled(p NavigationWatcher) Condition {
	return Condition{
		Name: "navigation to settle",
		Check: func(ctx context.Context) (bool, error) {
			return p.DocumentReplaced(ctx)
		},
	}
}
