package form

import (
	"github.com/go-logr/logr"

	"github.com/goliatone/go-enlist/pkg/command"
	"github.com/goliatone/go-enlist/pkg/notify"
	"github.com/goliatone/go-enlist/pkg/schema"
)

// Option customises controller construction.
type Option func(*Controller)

// WithLogger injects the logger used for lifecycle transitions.
func WithLogger(log logr.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithNotifier injects the channel that receives success and failure
// notifications.
func WithNotifier(notifier notify.Notifier) Option {
	return func(c *Controller) {
		if notifier != nil {
			c.notifier = notifier
		}
	}
}

// WithFormatter overrides the notification message formatter.
func WithFormatter(formatter *notify.Formatter) Option {
	return func(c *Controller) {
		if formatter != nil {
			c.formatter = formatter
		}
	}
}

// WithNavigator injects the navigation callback invoked after a non-reset
// save. The controller never navigates on "save and add another".
func WithNavigator(navigate func(path string)) Option {
	return func(c *Controller) {
		c.navigate = navigate
	}
}

// WithSavedPath overrides the path passed to the navigator on non-reset
// success.
func WithSavedPath(path string) Option {
	return func(c *Controller) {
		if path != "" {
			c.savedPath = path
		}
	}
}

// WithMapper overrides the submission mapper.
func WithMapper(mapper *command.Mapper) Option {
	return func(c *Controller) {
		if mapper != nil {
			c.mapper = mapper
		}
	}
}

// WithBaseRules overrides the static base rules fed into schema synthesis.
func WithBaseRules(rules []schema.Rule) Option {
	return func(c *Controller) {
		if len(rules) > 0 {
			c.baseRules = append([]schema.Rule(nil), rules...)
		}
	}
}
