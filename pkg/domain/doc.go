/*
Package domain contains the core domain models of the briefing engine.

It defines the values that flow through a behavior tree tick: the immutable
RunContext supplied by the caller, the TaskResult returned by every task,
the NodeStatus returned by every tree node, and the error taxonomy used to
report a failed run. The package is pure and free of I/O, concurrency and
persistence concerns.

# Key Entities

  - RunContext: Read-only inputs of a run (location, topic, item count).
  - Payload: Structured output of a task, stored in a SharedState slot.
  - TaskResult: Tagged Success(payload) or Failure(reason).
  - NodeStatus: Success, Failure or Running.
  - TreeEvaluationFailure: The typed error returned when a run does not produce output.
*/
package domain
