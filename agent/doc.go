// Package agent implements the agent and its orchestration loop.
//
// An Agent binds a name, instructions and a tool registry to a model client
// and a session store. Its lifecycle is:
//
//  1. Construct with New and configure via options, SetInstructions or AddTools.
//  2. Call Setup to push the configuration to the model endpoint.
//  3. Call Run any number of times, optionally continuing a session.
//
// Run drives the model/tool loop:
//
//	AWAITING_MODEL -> MODEL_RESPONDED -> (EXECUTING_TOOLS -> AWAITING_MODEL)* -> DONE
//
// Each model round counts as one step. Tool actions requested in a round run
// concurrently and their results are fed back in the order the model emitted
// them. Tool failures become tool results; only a failing model call aborts
// the run.
//
// An agent can be exposed to another agent as a tool with AsTool, which is how
// supervisor/worker arrangements are built.
package agent
