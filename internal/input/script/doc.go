// Package script loads action handlers from Lua modules.
//
// A module is a Lua chunk that returns a table:
//
//	return {
//	    name   = "jump",               -- defaults to the module label
//	    inputs = { "Space", "<C-j>" },
//	    state  = "begin",              -- optional
//	    handle = function(ev)
//	        notify("jumped at " .. ev.x .. "," .. ev.y)
//	    end,
//	}
//
// With a state field the module behaves like action.New: handle(ev) runs only
// for that state and every state is sunk. Without it, handle(state, ev) runs
// for every event and returns "sink", "pass" or nothing.
//
// The event table passed to handle has the fields input, state, x and y.
//
// Modules run in a sandbox: only the base, table, string and math libraries
// are available, and file and chunk loading functions are removed.
// gopher-lua states are not goroutine-safe; a State and the handlers it
// produced must be used from the host's event goroutine.
package script
