/*
Package session hosts many concurrent runs of one story.

Each run lives in a ports.SaveStore under its own key. The Manager serializes
access per session with reference-counted local mutexes and, optionally, a
ports.DistributedLocker so several replicas can share one store.
*/
package session
