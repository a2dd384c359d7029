// Package loader aggregates action handlers from a container of modules.
//
// LoadOrdered produces the registration order for a context: children are
// stable-sorted by ascending priority (unprioritized last, in enumeration
// order) and the loaded handlers are then reversed. The lowest priority
// number therefore ends up last, is bound last, and wins input conflicts on
// hosts where later bindings take precedence.
//
// LoadAsMap ignores priority and rejects duplicate action names.
package loader
