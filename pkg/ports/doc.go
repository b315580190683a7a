/*
Package ports defines the driven ports (interfaces) of the briefing engine.

These interfaces decouple the behavior tree runtime from the work it
orchestrates and from the backends that work depends on, so tasks, data
sources and caches can be swapped for test doubles.

# Key Interfaces

  - Task: A unit of work ticked by an Action node.
  - Introspectable: Optional diagnostic state exposed by a Task.
  - WeatherSource, HeadlineSource: External data lookups that may fail.
  - Generator: A language-generation backend used by the synthesis task.
  - Cache: Byte cache with TTL used to memoize source lookups.
*/
package ports
