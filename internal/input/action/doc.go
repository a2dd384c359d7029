// Package action defines action handlers: a name, the inputs it claims, and
// the callback the host invokes when one of those inputs changes state.
//
// Two handler shapes live here. Command handlers (New, Begin, End) run their
// callback for one input state and sink every state, claiming their inputs
// outright. Direct handlers (Func) return whatever their callback decides.
// The chord proxy in package binding is the third implementation of Handler.
//
//	jump := action.Begin("jump", key.MustParseAll("Space"), func(action.Event) {
//	    player.Jump()
//	})
package action
